package model

// Gain bounds for a single biquad band, symmetric around 0 dB.
const (
	MinGain = -12.0
	MaxGain = 12.0
)

// BandCount is the fixed number of equalizer bands.
const BandCount = 10

// AudioFilter is a single biquad (second-order IIR) peaking EQ band spec.
type AudioFilter struct {
	Frequency float64 // center frequency, Hz
	Q         float64
	Gain      float64 // dB, clamped to [MinGain, MaxGain]
}

// NewAudioFilter clamps Gain to the allowed range.
func NewAudioFilter(freq, q, gain float64) AudioFilter {
	if gain > MaxGain {
		gain = MaxGain
	}
	if gain < MinGain {
		gain = MinGain
	}
	return AudioFilter{Frequency: freq, Q: q, Gain: gain}
}

// Equal compares frequency, Q and gain.
func (a AudioFilter) Equal(other AudioFilter) bool {
	return a.Frequency == other.Frequency && a.Q == other.Q && a.Gain == other.Gain
}

// Preset is a fixed-length ordered sequence of filters, one per band.
// Named presets are immutable templates; "Custom" is the only preset a
// caller is expected to mutate band-by-band.
type Preset struct {
	Name    string
	Filters [BandCount]AudioFilter
}

// eqFrequencies are the 10 center frequencies used by every built-in
// preset and by Custom.
var eqFrequencies = [BandCount]float64{70, 180, 320, 600, 1000, 3000, 6000, 12000, 14000, 16000}

func flatFilters() [BandCount]AudioFilter {
	var f [BandCount]AudioFilter
	for i, freq := range eqFrequencies {
		f[i] = NewAudioFilter(freq, 1.4, 0)
	}
	return f
}

func gainsFilters(gains [BandCount]float64) [BandCount]AudioFilter {
	var f [BandCount]AudioFilter
	for i, freq := range eqFrequencies {
		f[i] = NewAudioFilter(freq, 1.4, gains[i])
	}
	return f
}

// NewCustomPreset builds a mutable Custom preset from the flat (0 dB) bank.
func NewCustomPreset() Preset {
	return Preset{Name: "Custom", Filters: flatFilters()}
}

// SetBand returns a copy of the preset with a single band's gain replaced.
// Only meaningful for the Custom preset; built-ins are treated as templates
// and callers should clone before mutating.
func (p Preset) SetBand(band int, gain float64) Preset {
	if band < 0 || band >= BandCount {
		return p
	}
	p.Filters[band] = NewAudioFilter(p.Filters[band].Frequency, p.Filters[band].Q, gain)
	return p
}

// BuiltinPresets are immutable named templates, one filter bank per genre.
// Gains are illustrative parametric-EQ curves, not measured from reference
// masters.
var BuiltinPresets = map[string]Preset{
	"Flat": {Name: "Flat", Filters: flatFilters()},
	"Rock": {Name: "Rock", Filters: gainsFilters([BandCount]float64{
		4, 3, -2, -3, -1, 2, 4, 5, 5, 5,
	})},
	"Pop": {Name: "Pop", Filters: gainsFilters([BandCount]float64{
		-1, 2, 4, 4, 1, -1, -2, -2, -1, -1,
	})},
	"Jazz": {Name: "Jazz", Filters: gainsFilters([BandCount]float64{
		3, 2, 1, 2, -2, -2, 0, 1, 2, 3,
	})},
	"Classical": {Name: "Classical", Filters: gainsFilters([BandCount]float64{
		4, 3, 2, 0, 0, 0, -3, -3, -3, -4,
	})},
	"Bass Boost": {Name: "Bass Boost", Filters: gainsFilters([BandCount]float64{
		7, 6, 5, 3, 1, 0, 0, 0, 0, 0,
	})},
}
