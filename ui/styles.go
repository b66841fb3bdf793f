package ui

import "github.com/charmbracelet/lipgloss"

// theme groups the palette so every pane pulls its colors from one place.
// Standard ANSI slots (0-15) keep the player readable on any terminal
// scheme, light or dark.
type theme struct {
	border  lipgloss.ANSIColor
	text    lipgloss.ANSIColor
	dim     lipgloss.ANSIColor
	accent  lipgloss.ANSIColor
	playing lipgloss.ANSIColor
	volume  lipgloss.ANSIColor
	danger  lipgloss.ANSIColor

	// spectrum gradient, low level -> high level
	specLow  lipgloss.ANSIColor
	specMid  lipgloss.ANSIColor
	specHigh lipgloss.ANSIColor
}

var colors = theme{
	border:   8,  // bright black
	text:     7,  // light gray
	dim:      8,  // bright black
	accent:   14, // bright cyan
	playing:  10, // bright green
	volume:   2,  // green
	danger:   9,  // bright red
	specLow:  10, // bright green
	specMid:  11, // bright yellow
	specHigh: 9,  // bright red
}

// Frame and header styles.
var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.border).
			Padding(1, 2).
			Width(66)

	miniFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.border).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Foreground(colors.playing).Bold(true)
	trackStyle = lipgloss.NewStyle().Foreground(colors.accent)
	timeStyle  = lipgloss.NewStyle().Foreground(colors.text)

	statusStyle = lipgloss.NewStyle().Foreground(colors.playing).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colors.dim)
	labelStyle  = lipgloss.NewStyle().Foreground(colors.text).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(colors.dim)
	errorStyle  = lipgloss.NewStyle().Foreground(colors.danger)
)

// Transport bars, rendered every frame; built once to avoid per-frame
// allocation.
var (
	seekFillStyle = lipgloss.NewStyle().Foreground(colors.accent)
	seekDimStyle  = lipgloss.NewStyle().Foreground(colors.dim)
	volBarStyle   = lipgloss.NewStyle().Foreground(colors.volume)
	toggleOnStyle = lipgloss.NewStyle().Foreground(colors.accent).Bold(true)
)

// Equalizer pane.
var (
	eqActiveStyle   = lipgloss.NewStyle().Foreground(colors.accent).Bold(true)
	eqInactiveStyle = lipgloss.NewStyle().Foreground(colors.dim)
)

// Playlist pane.
var (
	playlistItemStyle     = lipgloss.NewStyle().Foreground(colors.text)
	playlistActiveStyle   = lipgloss.NewStyle().Foreground(colors.playing).Bold(true)
	playlistSelectedStyle = lipgloss.NewStyle().Foreground(colors.accent).Bold(true)
)

// Lyrics pane.
var lyricsLineStyle = lipgloss.NewStyle().Foreground(colors.text)

// Spectrum visualizer bars, colored by level.
var (
	specLowStyle  = lipgloss.NewStyle().Foreground(colors.specLow)
	specMidStyle  = lipgloss.NewStyle().Foreground(colors.specMid)
	specHighStyle = lipgloss.NewStyle().Foreground(colors.specHigh)
)
