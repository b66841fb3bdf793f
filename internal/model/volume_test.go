package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VolumeDefaultIsFull(t *testing.T) {
	v := DefaultVolume()
	assert.Equal(t, 100, v.Display())
	assert.False(t, v.IsMuted())
	assert.Equal(t, 1.0, v.Scalar())
}

func Test_VolumeIncDecClamp(t *testing.T) {
	v := NewVolume(0.98)
	v = v.Inc()
	assert.Equal(t, 100, v.Display())

	v = NewVolume(0.01)
	v = v.Dec()
	assert.Equal(t, 0, v.Display())
}

func Test_VolumeMuteZeroesScalarNotPercentage(t *testing.T) {
	v := NewVolume(0.5)
	v = v.ToggleMute()
	assert.True(t, v.IsMuted())
	assert.Equal(t, 0.0, v.Scalar())
	assert.Equal(t, 0, v.Display())
	assert.Equal(t, 0.5, v.Percentage())

	v = v.ToggleMute()
	assert.False(t, v.IsMuted())
	assert.Equal(t, 0.5, v.Scalar())
}

func Test_VolumeEqualIgnoresMute(t *testing.T) {
	a := NewVolume(0.5)
	b := NewVolume(0.5).ToggleMute()
	assert.True(t, a.Equal(b))
}
