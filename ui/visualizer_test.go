package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AnalyzeWithTooFewSamplesDecaysPreviousFrame(t *testing.T) {
	v := NewVisualizer()
	v.prev[0] = 0.8

	bands := v.Analyze([]float64{0.1, 0.2}) // shorter than numBands*2
	assert.InDelta(t, 0.64, bands[0], 1e-9)
}

func Test_AnalyzeClampsLevelsToUnitRange(t *testing.T) {
	v := NewVisualizer()
	bars := make([]float64, numBands*2)
	for i := range bars {
		bars[i] = 1000 // large magnitude, should clamp to 1.0 after a few frames
	}

	var bands [numBands]float64
	for i := 0; i < 10; i++ {
		bands = v.Analyze(bars)
	}
	for b, level := range bands {
		assert.GreaterOrEqual(t, level, 0.0, "band %d below 0", b)
		assert.LessOrEqual(t, level, 1.0, "band %d above 1", b)
	}
}

func Test_AnalyzeSilenceStaysAtZero(t *testing.T) {
	v := NewVisualizer()
	bars := make([]float64, numBands*2)

	bands := v.Analyze(bars)
	for b, level := range bands {
		assert.Equal(t, 0.0, level, "band %d", b)
	}
}

func Test_AnalyzeAttackIsFasterThanDecay(t *testing.T) {
	v := NewVisualizer()
	loud := make([]float64, numBands*2)
	for i := range loud {
		loud[i] = 1000
	}
	quiet := make([]float64, numBands*2)

	v.Analyze(quiet)
	afterAttack := v.Analyze(loud)
	afterDecay := v.Analyze(quiet)

	// One attack frame should climb more than one decay frame falls back,
	// matching the 0.6 attack / 0.25 decay blend weights.
	attackDelta := afterAttack[0]
	decayDelta := afterAttack[0] - afterDecay[0]
	assert.Greater(t, attackDelta, 0.0)
	assert.Greater(t, decayDelta, 0.0)
	assert.Less(t, decayDelta, attackDelta)
}
