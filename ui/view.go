package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wk-j/cliamp/internal/model"
)

const (
	panelWidth        = 60 // usable inner width (66 frame - 2 border - 4 padding)
	miniPanelMinW     = 28 // minimum usable inner width for mini mode
	miniFrameOverhead = 4  // border (2) + padding (2×1) for mini frame
)

// pw returns the usable inner panel width for the current mode.
func (m Model) pw() int {
	if m.mini {
		w := m.width - miniFrameOverhead
		if w < miniPanelMinW {
			w = miniPanelMinW
		}
		return w
	}
	return panelWidth
}

// miniFrameW returns the outer frame width for mini mode.
func (m Model) miniFrameW() int {
	w := m.width
	if w < miniPanelMinW+miniFrameOverhead {
		w = miniPanelMinW + miniFrameOverhead
	}
	return w
}

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	listHeader := m.renderPlaylistHeader()
	list := m.renderPlaylist()
	if m.lyricsOpen {
		listHeader = m.renderLyricsHeader()
		list = m.renderLyrics()
	}

	var sections []string
	if m.mini {
		sections = []string{
			m.renderTitle(),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			m.renderSpectrum(),
			m.renderSeekBar(),
			m.renderVolume(),
			listHeader,
			list,
			m.renderHelp(),
		}
	} else {
		sections = []string{
			m.renderTitle(),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			"",
			m.renderSpectrum(),
			m.renderSeekBar(),
			"",
			m.renderVolume(),
			m.renderEQ(),
			"",
			listHeader,
			list,
			"",
			m.renderHelp(),
		}
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.err)))
	}

	content := strings.Join(sections, "\n")
	if m.mini {
		return miniFrameStyle.Width(m.miniFrameW()).Render(content)
	}
	return frameStyle.Render(content)
}

func (m Model) renderTitle() string {
	return titleStyle.Render("C L I A M P")
}

func (m Model) renderTrackInfo() string {
	snap := m.state.snapshot()
	name := ""
	if snap.hasSong {
		name = snap.song.Artist + " - " + snap.song.Title
		if snap.song.Artist == "" {
			name = snap.song.Title
		}
	}
	if name == "" {
		name = "No track loaded"
	}

	pw := m.pw()
	prefix := "\U000f0e1e "
	if m.mini {
		prefix = "♫ "
	}
	maxW := pw - len([]rune(prefix))
	runes := []rune(name)

	if len(runes) <= maxW {
		return trackStyle.Render(prefix + name)
	}

	// Cyclic scrolling for long titles
	sep := []rune("   \U000f0e1e   ")
	if m.mini {
		sep = []rune("  ♫  ")
	}
	padded := append(runes, sep...)
	total := len(padded)
	off := m.titleOff % total

	display := make([]rune, maxW)
	for i := 0; i < maxW; i++ {
		display[i] = padded[(off+i)%total]
	}
	return trackStyle.Render(prefix + string(display))
}

func (m Model) renderTimeStatus() string {
	snap := m.state.snapshot()
	pos := time.Duration(snap.song.Current.Position * float64(time.Second))
	dur := time.Duration(snap.song.Duration * float64(time.Second))

	posMin := int(pos.Minutes())
	posSec := int(pos.Seconds()) % 60
	durMin := int(dur.Minutes())
	durSec := int(dur.Seconds()) % 60

	timeStr := fmt.Sprintf("%02d:%02d / %02d:%02d", posMin, posSec, durMin, durSec)

	playing := snap.hasSong && snap.song.Current.State == model.MediaPlay
	paused := snap.hasSong && snap.song.Current.State == model.MediaPause

	var status string
	if m.mini {
		switch {
		case paused:
			status = statusStyle.Render("\uf04c")
		case playing:
			status = statusStyle.Render("\uf04b")
		default:
			status = dimStyle.Render("\uf04d")
		}
	} else {
		switch {
		case paused:
			status = statusStyle.Render("\uf04c Paused")
		case playing:
			status = statusStyle.Render("\uf04b Playing")
		default:
			status = dimStyle.Render("\uf04d Stopped")
		}
	}

	left := timeStyle.Render(timeStr)
	gap := m.pw() - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderSpectrum() string {
	snap := m.state.snapshot()
	bands := m.vis.Analyze(snap.bars)
	if m.mini {
		return m.vis.RenderDynamic(bands, m.pw())
	}
	return m.vis.Render(bands)
}

func (m Model) renderSeekBar() string {
	snap := m.state.snapshot()
	pos := time.Duration(snap.song.Current.Position * float64(time.Second))
	dur := time.Duration(snap.song.Duration * float64(time.Second))

	var progress float64
	if dur > 0 {
		progress = float64(pos) / float64(dur)
	}
	progress = max(0, min(1, progress))

	pw := m.pw()
	filled := int(progress * float64(pw-1))

	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("━", max(0, pw-filled-1)))
}

func (m Model) renderVolume() string {
	pct := m.volume.Display()
	frac := float64(pct) / 100
	label := fmt.Sprintf(" %d%%", pct)
	if m.volume.IsMuted() {
		label = " mute"
	}

	if m.mini {
		// "V " (2) + bar + " 100%" (5) = 7 overhead
		barW := m.pw() - 7
		if barW < 4 {
			barW = 4
		}
		filled := int(frac * float64(barW))
		bar := volBarStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barW-filled))
		return labelStyle.Render("V ") + bar + dimStyle.Render(label)
	}

	barW := 22
	filled := int(frac * float64(barW))
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))
	return labelStyle.Render("VOL ") + bar + dimStyle.Render(label)
}

func (m Model) renderEQ() string {
	labels := [model.BandCount]string{"70", "180", "320", "600", "1k", "3k", "6k", "12k", "14k", "16k"}

	parts := make([]string, len(labels))
	for i, label := range labels {
		style := eqInactiveStyle
		if m.focus == focusEQ && i == m.eqCursor {
			style = eqActiveStyle
			label = fmt.Sprintf("%+.0f", m.preset.Filters[i].Gain)
		}
		parts[i] = style.Render(label)
	}

	return labelStyle.Render("EQ  ") + strings.Join(parts, " ")
}

func (m Model) renderPlaylistHeader() string {
	var shuffle string
	if m.playlist.Shuffled() {
		shuffle = toggleOnStyle.Render("[S]")
	} else {
		shuffle = dimStyle.Render("[S]")
	}

	if m.mini {
		var repeat string
		if m.playlist.Repeat() != 0 {
			repeat = toggleOnStyle.Render(fmt.Sprintf("[R:%s]", m.playlist.Repeat()))
		} else {
			repeat = dimStyle.Render("[R]")
		}
		return dimStyle.Render("─ Playlist ─ ") + shuffle + " " + repeat
	}

	if m.playlist.Shuffled() {
		shuffle = toggleOnStyle.Render("[Shuffle]")
	} else {
		shuffle = dimStyle.Render("[Shuffle]")
	}

	repeatStr := fmt.Sprintf("[Repeat: %s]", m.playlist.Repeat())
	if m.playlist.Repeat() != 0 {
		repeatStr = toggleOnStyle.Render(repeatStr)
	} else {
		repeatStr = dimStyle.Render(repeatStr)
	}

	return dimStyle.Render("── Playlist ── ") + shuffle + " " + repeatStr + " " + dimStyle.Render("──")
}

func (m Model) renderPlaylist() string {
	tracks := m.playlist.Tracks()
	if len(tracks) == 0 {
		return dimStyle.Render("  No tracks loaded")
	}

	snap := m.state.snapshot()
	currentIdx := m.playlist.Index()
	visible := min(m.plVisible, len(tracks))

	scroll := m.plScroll
	if scroll+visible > len(tracks) {
		scroll = len(tracks) - visible
	}
	scroll = max(0, scroll)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(tracks); i++ {
		prefix := "  "
		style := playlistItemStyle

		if i == currentIdx && snap.hasSong {
			prefix = "\uf04b "
			style = playlistActiveStyle
		}

		if m.focus == focusPlaylist && i == m.plCursor {
			style = playlistSelectedStyle
		}

		name := tracks[i].DisplayName()
		maxW := m.pw() - 6
		nameRunes := []rune(name)
		if len(nameRunes) > maxW {
			name = string(nameRunes[:maxW-1]) + "…"
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderLyricsHeader() string {
	if m.mini {
		return dimStyle.Render("─ Lyrics ─")
	}
	return dimStyle.Render("── Lyrics ── ") + trackStyle.Render(m.lyricsTrack) + " " + dimStyle.Render("──")
}

func (m Model) renderLyrics() string {
	if m.lyricsLoading {
		return dimStyle.Render("  Searching…")
	}
	if len(m.lyricsText) == 0 {
		return dimStyle.Render("  No lyrics found")
	}

	visible := m.plVisible
	maxW := m.pw() - 2
	scroll := min(m.lyricsScroll, len(m.lyricsText)-1)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(m.lyricsText); i++ {
		line := m.lyricsText[i]
		runes := []rune(line)
		if len(runes) > maxW {
			line = string(runes[:maxW-1]) + "…"
		}
		lines = append(lines, lyricsLineStyle.Render("  "+line))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	if m.mini {
		return helpStyle.Render("[Spc]Play [<>]Trk [Q]Quit")
	}
	return helpStyle.Render("[Spc]\U000f040e  [<>]Trk [\uf060\uf061]Seek [+-]Vol [Tab]Focus [L]Lyrics [Q]Quit")
}
