package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewAudioFilterClampsGain(t *testing.T) {
	f := NewAudioFilter(1000, 1.4, 99)
	assert.Equal(t, MaxGain, f.Gain)

	f = NewAudioFilter(1000, 1.4, -99)
	assert.Equal(t, MinGain, f.Gain)
}

func Test_CustomPresetStartsFlat(t *testing.T) {
	p := NewCustomPreset()
	for _, f := range p.Filters {
		assert.Equal(t, 0.0, f.Gain)
	}
}

func Test_PresetSetBandOnlyTouchesThatBand(t *testing.T) {
	p := NewCustomPreset()
	p = p.SetBand(2, 6)
	for i, f := range p.Filters {
		if i == 2 {
			assert.Equal(t, 6.0, f.Gain)
		} else {
			assert.Equal(t, 0.0, f.Gain)
		}
	}
}

func Test_PresetSetBandOutOfRangeIsNoop(t *testing.T) {
	p := NewCustomPreset()
	same := p.SetBand(-1, 6)
	assert.Equal(t, p, same)
	same = p.SetBand(BandCount, 6)
	assert.Equal(t, p, same)
}

func Test_BuiltinPresetsHaveFullBandCount(t *testing.T) {
	for name, p := range BuiltinPresets {
		assert.Len(t, p.Filters, BandCount, "preset %s", name)
	}
}
