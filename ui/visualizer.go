package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	numBands = 10
	barWidth = 5 // character width of each spectrum bar
)

// Unicode block elements for bar height (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Visualizer turns the audio loop's already-analyzed spectrum bars
// (left channel then right channel) into the rendered bar string. The FFT
// runs once, in the audio loop; the UI's only job is display.
type Visualizer struct {
	prev [numBands]float64 // previous frame for temporal smoothing
}

func NewVisualizer() *Visualizer {
	return &Visualizer{}
}

// Analyze normalizes the Player's raw per-bar L/R magnitudes (as published
// via Listener.SendAudioRaw) into 10 levels in [0,1], averaging channels
// and applying fast-attack/slow-decay smoothing.
func (v *Visualizer) Analyze(bars []float64) [numBands]float64 {
	var bands [numBands]float64
	if len(bars) < numBands*2 {
		for b := 0; b < numBands; b++ {
			bands[b] = v.prev[b] * 0.8
			v.prev[b] = bands[b]
		}
		return bands
	}

	// bars is channel 0 then channel 1; the analyzer may be resized to
	// more than numBands bars, in which case source bars are averaged
	// down onto the 10 display bands.
	half := len(bars) / 2
	for b := 0; b < numBands; b++ {
		lo := b * half / numBands
		hi := (b + 1) * half / numBands
		if hi <= lo {
			hi = lo + 1
		}
		var mag float64
		for i := lo; i < hi && i < half; i++ {
			mag += (bars[i] + bars[i+half]) / 2
		}
		mag /= float64(hi - lo)
		level := 0.0
		if mag > 0 {
			level = (20*math.Log10(mag) + 10) / 50
		}
		level = max(0, min(1, level))

		if level > v.prev[b] {
			level = level*0.6 + v.prev[b]*0.4
		} else {
			level = level*0.25 + v.prev[b]*0.75
		}
		bands[b] = level
		v.prev[b] = level
	}

	return bands
}

// RenderDynamic converts band levels into a spectrum bar string sized to fit the given width.
// It uses all 10 bands and computes bar width to fill the available space.
func (v *Visualizer) RenderDynamic(bands [numBands]float64, availWidth int) string {
	if availWidth < numBands {
		return ""
	}
	// availWidth = numBands*bw + (numBands-1) separators
	bw := (availWidth - (numBands - 1)) / numBands
	if bw < 1 {
		bw = 1
	}

	var sb strings.Builder
	for i, level := range bands {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		block := barBlocks[idx]

		var style lipgloss.Style
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		default:
			style = specLowStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, bw)))
		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// Render converts band levels into a colored spectrum bar string.
func (v *Visualizer) Render(bands [numBands]float64) string {
	var sb strings.Builder

	for i, level := range bands {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))

		block := barBlocks[idx]

		// Color gradient: green -> yellow -> red based on level
		var style lipgloss.Style
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		default:
			style = specLowStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, barWidth)))
		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}

	return sb.String()
}
