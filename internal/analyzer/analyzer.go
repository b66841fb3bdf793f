// Package analyzer implements the spectrum analyzer: three parallel
// windowed FFTs over bass/mid/treble bands, logarithmic bar binning, and
// cava-style falloff/integral smoothing with auto-sensitivity, on top of
// github.com/mjibson/go-dsp/fft.
package analyzer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	kSampleRate     = 44100.0
	kNumberChannels = 2
	kLowCutOff      = 50.0
	kHighCutOff     = 10000.0
	kNoiseReduction = 0.77

	bassCutOffHz   = 100.0
	trebleCutOffHz = 500.0
)

// freqAnalysis is one of the three band blocks (bass/mid/treble), each
// with its own FFT size and therefore its own frequency resolution.
type freqAnalysis struct {
	bufferSize int
	window     []float64 // precomputed Hann window
	inLeft     []float64
	inRight    []float64
}

func newFreqAnalysis(bufferSize int) *freqAnalysis {
	fa := &freqAnalysis{
		bufferSize: bufferSize,
		window:     make([]float64, bufferSize),
		inLeft:     make([]float64, bufferSize),
		inRight:    make([]float64, bufferSize),
	}
	for i := range fa.window {
		fa.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(bufferSize-1)))
	}
	return fa
}

// Analyzer turns interleaved stereo PCM into per-channel spectrum bars.
type Analyzer struct {
	numberBars int
	outputSize int // numberBars * kNumberChannels

	bass, mid, treble *freqAnalysis

	input     []float64 // concatenated input ring, size bass.bufferSize*channels
	inputSize int

	cutOffFrequency []float64
	eq              []float64
	lowerCutOff     []int
	upperCutOff     []int
	bassCutOffBar   int
	trebleCutOffBar int

	prevOut []float64
	mem     []float64
	peak    []float64
	fall    []int

	sens     float64
	sensInit bool

	framerate float64
	frameSkip int
}

// Init allocates the three analysis blocks, the logarithmic cutoff tables
// and the smoothing state. outputSize must equal numberBars*kNumberChannels.
func Init(numberBars, outputSize int) (*Analyzer, error) {
	if outputSize != numberBars*kNumberChannels {
		return nil, errOutputSizeMismatch(numberBars, outputSize)
	}
	const base = 1024
	a := &Analyzer{
		numberBars: numberBars,
		outputSize: outputSize,
		bass:       newFreqAnalysis(base * 8),
		mid:        newFreqAnalysis(base * 4),
		treble:     newFreqAnalysis(base),
		sens:       1,
		sensInit:   true,
	}
	a.inputSize = a.bass.bufferSize * kNumberChannels
	a.input = make([]float64, a.inputSize)

	a.cutOffFrequency = make([]float64, numberBars+1)
	a.eq = make([]float64, numberBars+1)
	a.lowerCutOff = make([]int, numberBars+1)
	a.upperCutOff = make([]int, numberBars+1)

	a.prevOut = make([]float64, outputSize)
	a.mem = make([]float64, outputSize)
	a.peak = make([]float64, outputSize)
	a.fall = make([]int, outputSize)

	// Seeded non-zero: a zero framerate would blow up the first
	// gravity computation in Execute.
	a.framerate = kSampleRate * kNumberChannels / float64(base)
	a.frameSkip = 1

	a.buildCutoffTables()
	return a, nil
}

type errOutputSizeMismatchT struct{ bars, size int }

func (e errOutputSizeMismatchT) Error() string {
	return "analyzer: output_size must equal number_of_bars*channels"
}
func errOutputSizeMismatch(bars, size int) error { return errOutputSizeMismatchT{bars, size} }

// GetBufferSize returns the maximum acceptable in_size for Execute.
func (a *Analyzer) GetBufferSize() int { return a.inputSize }

// GetOutputSize returns numberBars*channels.
func (a *Analyzer) GetOutputSize() int { return a.outputSize }

// buildCutoffTables assigns each bar a contiguous FFT bin range from a
// logarithmic frequency distribution, including the "push bins up when
// the distribution clumps in the bass" correction.
func (a *Analyzer) buildCutoffTables() {
	n := a.numberBars
	frequencyConstant := math.Log10(kLowCutOff/kHighCutOff) / (1/(float64(n)+1) - 1)

	relativeCutOff := make([]float64, n+1)
	barBuffer := make([]int, n+1)

	a.bassCutOffBar = -1
	a.trebleCutOffBar = -1
	firstBar := true
	firstTrebleBar := 0

	for i := 0; i <= n; i++ {
		coeff := -frequencyConstant
		coeff += (float64(i) + 1) / (float64(n) + 1) * frequencyConstant
		a.cutOffFrequency[i] = kHighCutOff * math.Pow(10, coeff)

		if i > 0 {
			if a.cutOffFrequency[i-1] >= a.cutOffFrequency[i] && a.cutOffFrequency[i-1] > bassCutOffHz {
				a.cutOffFrequency[i] = a.cutOffFrequency[i-1] + (a.cutOffFrequency[i-1] - a.cutOffFrequency[i-2])
			}
		}

		relativeCutOff[i] = a.cutOffFrequency[i] / (kSampleRate / 2)
		a.eq[i] = math.Pow(a.cutOffFrequency[i], 1)
		a.eq[i] /= math.Pow(2, 18)
		a.eq[i] /= math.Log2(float64(a.bass.bufferSize))

		switch {
		case a.cutOffFrequency[i] < bassCutOffHz:
			barBuffer[i] = 1
			a.lowerCutOff[i] = int(relativeCutOff[i] * float64(a.bass.bufferSize/2))
			a.bassCutOffBar++
			a.trebleCutOffBar++
			if a.bassCutOffBar > 0 {
				firstBar = false
			}
			if a.lowerCutOff[i] > a.bass.bufferSize/2 {
				a.lowerCutOff[i] = a.bass.bufferSize / 2
			}
		case a.cutOffFrequency[i] < trebleCutOffHz:
			barBuffer[i] = 2
			a.lowerCutOff[i] = int(relativeCutOff[i] * float64(a.mid.bufferSize/2))
			a.trebleCutOffBar++
			if a.trebleCutOffBar-a.bassCutOffBar == 1 {
				firstBar = true
				if i > 0 {
					a.upperCutOff[i-1] = int(relativeCutOff[i] * float64(a.bass.bufferSize/2))
				}
			} else {
				firstBar = false
			}
			if a.lowerCutOff[i] > a.mid.bufferSize/2 {
				a.lowerCutOff[i] = a.mid.bufferSize / 2
			}
		default:
			barBuffer[i] = 3
			a.lowerCutOff[i] = int(relativeCutOff[i] * float64(a.treble.bufferSize/2))
			firstTrebleBar++
			if firstTrebleBar == 1 {
				firstBar = true
				if i > 0 {
					a.upperCutOff[i-1] = int(relativeCutOff[i] * float64(a.mid.bufferSize/2))
				}
			} else {
				firstBar = false
			}
			if a.lowerCutOff[i] > a.treble.bufferSize/2 {
				a.lowerCutOff[i] = a.treble.bufferSize / 2
			}
		}

		if i > 0 {
			if !firstBar {
				a.upperCutOff[i-1] = a.lowerCutOff[i] - 1

				if a.lowerCutOff[i] <= a.lowerCutOff[i-1] {
					roomForMore := false
					var bufLen int
					switch barBuffer[i] {
					case 1:
						bufLen = a.bass.bufferSize
					case 2:
						bufLen = a.mid.bufferSize
					default:
						bufLen = a.treble.bufferSize
					}
					if a.lowerCutOff[i-1]+1 < bufLen/2+1 {
						roomForMore = true
					}
					if roomForMore {
						a.lowerCutOff[i] = a.lowerCutOff[i-1] + 1
						a.upperCutOff[i-1] = a.lowerCutOff[i] - 1

						relativeCutOff[i] = float64(a.lowerCutOff[i]) / (float64(bufLen) / 2)
						a.cutOffFrequency[i] = relativeCutOff[i] * (kSampleRate / 2)
					}
				}
			} else if a.upperCutOff[i-1] <= a.lowerCutOff[i-1] {
				a.upperCutOff[i-1] = a.lowerCutOff[i-1] + 1
			}
		}
	}
}

// Execute runs one analysis pass over interleaved stereo float PCM `in`
// and writes GetOutputSize() normalized bar magnitudes to out (channel 0
// first, then channel 1).
func (a *Analyzer) Execute(in []float64, out []float64) {
	size := len(in) / kNumberChannels
	if size*kNumberChannels > a.inputSize {
		size = a.inputSize / kNumberChannels
	}

	silence := true
	if size > 0 {
		a.framerate -= a.framerate / 64
		a.framerate += (kSampleRate * kNumberChannels * float64(a.frameSkip) / float64(size*kNumberChannels)) / 64
		a.frameSkip = 1

		n := size * kNumberChannels
		copy(a.input[n:], a.input[:a.inputSize-n])
		for i := 0; i < n; i++ {
			a.input[n-i-1] = in[i]
			if in[i] != 0 {
				silence = false
			}
		}
	} else {
		a.frameSkip++
	}

	a.runBand(a.bass)
	a.runBand(a.mid)
	a.runBand(a.treble)

	bassSpecL := fft.FFTReal(a.bass.inLeft)
	bassSpecR := fft.FFTReal(a.bass.inRight)
	midSpecL := fft.FFTReal(a.mid.inLeft)
	midSpecR := fft.FFTReal(a.mid.inRight)
	trebSpecL := fft.FFTReal(a.treble.inLeft)
	trebSpecR := fft.FFTReal(a.treble.inRight)

	for n := 0; n < a.numberBars; n++ {
		var tempL, tempR float64
		var specL, specR []complex128
		switch {
		case n <= a.bassCutOffBar:
			specL, specR = bassSpecL, bassSpecR
		case n <= a.trebleCutOffBar:
			specL, specR = midSpecL, midSpecR
		default:
			specL, specR = trebSpecL, trebSpecR
		}
		for i := a.lowerCutOff[n]; i <= a.upperCutOff[n] && i < len(specL); i++ {
			tempL += cmplxAbs(specL[i])
			tempR += cmplxAbs(specR[i])
		}
		count := float64(a.upperCutOff[n] - a.lowerCutOff[n] + 1)
		if count <= 0 {
			count = 1
		}
		tempL = tempL / count * a.eq[n]
		tempR = tempR / count * a.eq[n]
		out[n] = tempL
		out[n+a.numberBars] = tempR
	}

	for n := range out {
		out[n] *= a.sens
	}

	gravityMod := math.Pow(60/a.framerate, 2.5) * 1.54 / kNoiseReduction
	if gravityMod < 1 {
		gravityMod = 1
	}

	overshoot := false
	for n := range out {
		if out[n] < a.prevOut[n] {
			out[n] = a.peak[n] * (1000 - float64(a.fall[n]*a.fall[n])*gravityMod) / 1000
			if out[n] < 0 {
				out[n] = 0
			}
			a.fall[n]++
		} else {
			a.peak[n] = out[n]
			a.fall[n] = 0
		}
		a.prevOut[n] = out[n]

		out[n] = a.mem[n]*kNoiseReduction + out[n]
		a.mem[n] = out[n]

		diff := 1000 - out[n]
		if diff < 0 {
			diff = 0
		}
		div := 1 / (diff + 1)
		a.mem[n] = a.mem[n] * (1 - div/20)

		if out[n] > 1000 {
			overshoot = true
		}
		out[n] /= 1000
		if out[n] < 0 {
			out[n] = 0
		}
	}

	switch {
	case overshoot:
		a.sens *= 0.98
		a.sensInit = false
	case !silence:
		a.sens *= 1.001
		if a.sensInit {
			a.sens *= 1.1
		}
	}
}

func (a *Analyzer) runBand(band *freqAnalysis) {
	for i := 0; i < band.bufferSize; i++ {
		r := a.input[i*2]
		l := a.input[i*2+1]
		band.inLeft[i] = band.window[i] * l
		band.inRight[i] = band.window[i] * r
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
