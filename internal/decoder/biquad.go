package decoder

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/wk-j/cliamp/internal/model"
)

// biquadStage is a single second-order IIR peaking EQ filter. Each stage
// keeps its own z^-1 state across chunks; state is fresh whenever a new
// stage is constructed (on preset change or seek), never otherwise.
type biquadStage struct {
	b0, b1, b2, a1, a2 float64
	x1, x2             [2]float64
	y1, y2             [2]float64
}

func newBiquadStage(f model.AudioFilter, sampleRate float64) *biquadStage {
	s := &biquadStage{}
	s.recalc(f, sampleRate)
	return s
}

func (s *biquadStage) recalc(f model.AudioFilter, sampleRate float64) {
	if f.Gain > -0.05 && f.Gain < 0.05 {
		// Effectively flat: identity coefficients, skip in Process.
		s.b0, s.b1, s.b2, s.a1, s.a2 = 1, 0, 0, 0, 0
		return
	}
	a := math.Pow(10, f.Gain/40)
	w0 := 2 * math.Pi * f.Frequency / sampleRate
	sinW0, cosW0 := math.Sin(w0), math.Cos(w0)
	alpha := sinW0 / (2 * f.Q)

	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	s.b0, s.b1, s.b2 = b0/a0, b1/a0, b2/a0
	s.a1, s.a2 = a1/a0, a2/a0
}

func (s *biquadStage) process(ch int, x float64) float64 {
	y := s.b0*x + s.b1*s.x1[ch] + s.b2*s.x2[ch] - s.a1*s.y1[ch] - s.a2*s.y2[ch]
	s.x2[ch] = s.x1[ch]
	s.x1[ch] = x
	s.y2[ch] = s.y1[ch]
	s.y1[ch] = y
	return y
}

// filterChain is the swappable biquad chain. UpdateFilters stages a new
// chain for the *next* Stream() call boundary; the currently running
// Stream() call always finishes with the chain it started with, so a
// preset change never takes effect mid-chunk.
type filterChain struct {
	sampleRate float64
	current    atomic.Pointer[[]*biquadStage]
	preset     atomic.Pointer[model.Preset]
}

func newFilterChain(sampleRate float64, initial model.Preset) *filterChain {
	fc := &filterChain{sampleRate: sampleRate}
	fc.apply(initial)
	return fc
}

// apply unconditionally (re)builds stages, resetting z^-1 state. Used at
// construction and whenever the decoder is rebuilt on seek.
func (fc *filterChain) apply(p model.Preset) {
	stages := make([]*biquadStage, len(p.Filters))
	for i, f := range p.Filters {
		stages[i] = newBiquadStage(f, fc.sampleRate)
	}
	fc.current.Store(&stages)
	pp := p
	fc.preset.Store(&pp)
}

// Update swaps the chain only if the preset actually differs from the
// currently staged one (per-band Equal), per the idempotence property:
// re-applying the same preset must not reset filter state or glitch audio.
func (fc *filterChain) Update(p model.Preset) {
	prev := fc.preset.Load()
	if prev != nil && presetsEqual(*prev, p) {
		return
	}
	fc.apply(p)
}

func presetsEqual(a, b model.Preset) bool {
	if len(a.Filters) != len(b.Filters) {
		return false
	}
	for i := range a.Filters {
		if !a.Filters[i].Equal(b.Filters[i]) {
			return false
		}
	}
	return true
}

func (fc *filterChain) process(ch int, x float64) float64 {
	stages := *fc.current.Load()
	for _, s := range stages {
		if s.b0 == 1 && s.b1 == 0 && s.b2 == 0 && s.a1 == 0 && s.a2 == 0 {
			continue // flat band, skip
		}
		x = s.process(ch, x)
	}
	return x
}

// filterStreamer applies the volume scalar then the biquad chain to every
// sample: volume first, then the stages in band order.
type filterStreamer struct {
	s      beep.Streamer
	chain  *filterChain
	volume atomic.Uint64 // math.Float64bits-encoded scalar
}

func newFilterStreamer(s beep.Streamer, chain *filterChain, initialVolume float64) *filterStreamer {
	fs := &filterStreamer{s: s, chain: chain}
	fs.setVolume(initialVolume)
	return fs
}

func (fs *filterStreamer) setVolume(v float64) {
	fs.volume.Store(math.Float64bits(v))
}

func (fs *filterStreamer) getVolume() float64 {
	return math.Float64frombits(fs.volume.Load())
}

func (fs *filterStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := fs.s.Stream(samples)
	gain := fs.getVolume()
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			v := samples[i][ch] * gain
			v = fs.chain.process(ch, v)
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			samples[i][ch] = v
		}
	}
	return n, ok
}

func (fs *filterStreamer) Err() error { return fs.s.Err() }
