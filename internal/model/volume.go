package model

import (
	"fmt"
	"math"
)

// volumeStep is the increment/decrement granularity for Inc/Dec.
const volumeStep = 0.05

// Volume is a percentage in [0, 1] with an independent mute flag. Equality
// (Equal) only compares the percentage.
type Volume struct {
	percentage float64
	muted      bool
}

// NewVolume clamps value to [0, 1].
func NewVolume(value float64) Volume {
	return Volume{percentage: clamp01(value)}
}

// DefaultVolume starts at full, unmuted.
func DefaultVolume() Volume { return Volume{percentage: 1.0} }

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Inc returns the volume stepped up by volumeStep, clamped to 1.0.
func (v Volume) Inc() Volume {
	v.percentage = clamp01(v.percentage + volumeStep)
	return v
}

// Dec returns the volume stepped down by volumeStep, clamped to 0.0.
func (v Volume) Dec() Volume {
	v.percentage = clamp01(v.percentage - volumeStep)
	return v
}

// ToggleMute flips the mute flag without touching the percentage.
func (v Volume) ToggleMute() Volume {
	v.muted = !v.muted
	return v
}

func (v Volume) IsMuted() bool { return v.muted }

// Percentage returns the raw [0,1] value regardless of mute state.
func (v Volume) Percentage() float64 { return v.percentage }

// Scalar returns the value to multiply samples by: 0 when muted.
func (v Volume) Scalar() float64 {
	if v.muted {
		return 0
	}
	return v.percentage
}

// Display returns round(percentage*100), or 0 when muted.
func (v Volume) Display() int {
	if v.muted {
		return 0
	}
	return int(math.Round(v.percentage * 100))
}

// Equal compares only the percentage; mute state is ignored.
func (v Volume) Equal(other Volume) bool {
	return v.percentage == other.percentage
}

func (v Volume) String() string {
	state := "unmuted"
	if v.muted {
		state = "muted"
	}
	return fmt.Sprintf("{volume:%d%% %s}", v.Display(), state)
}
