// Package ui implements the Bubbletea TUI for the CLIAMP terminal music
// player. The UI never calls into the decoder, sink or analyzer directly:
// every action goes through the Player's producer-side Notifier, and every
// piece of now-playing state the UI displays comes from a playerState
// snapshot fed by the Player's Listener callbacks.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wk-j/cliamp/internal/lyrics"
	"github.com/wk-j/cliamp/internal/model"
	"github.com/wk-j/cliamp/internal/player"
	"github.com/wk-j/cliamp/playlist"
)

type focusArea int

const (
	focusPlaylist focusArea = iota
	focusEQ
)

type tickMsg time.Time

// lyricsMsg delivers a finished lyric search back to the Update loop.
type lyricsMsg struct {
	track string
	lines lyrics.SongLyric
}

// Model is the Bubbletea model for the CLIAMP TUI.
type Model struct {
	notifier *player.Notifier
	state    *playerState
	playlist *playlist.Playlist
	vis      *Visualizer
	lyrics   *lyrics.LyricFinder

	volume model.Volume
	preset model.Preset

	lyricsOpen    bool
	lyricsLoading bool
	lyricsTrack   string
	lyricsText    lyrics.SongLyric
	lyricsScroll  int

	focus     focusArea
	eqCursor  int // selected EQ band (0-9)
	plCursor  int // selected playlist item
	plScroll  int // scroll offset for playlist view
	plVisible int // max visible playlist items
	titleOff  int // scroll offset for long track titles
	err       error
	quitting  bool
	mini      bool
	width     int
	height    int
}

// NewModel creates a Model wired to the given Player and playlist. p's
// Listener must be the *playerState returned by NewPlayerListener, set up
// before the Player started its audio loop.
func NewModel(p *player.Player, state *playerState, pl *playlist.Playlist, finder *lyrics.LyricFinder, autoPlay, mini bool) Model {
	m := Model{
		notifier:  p.Notifier(),
		state:     state,
		playlist:  pl,
		vis:       NewVisualizer(),
		lyrics:    finder,
		volume:    model.DefaultVolume(),
		preset:    model.NewCustomPreset(),
		plVisible: 5,
		mini:      mini,
	}
	if autoPlay && pl.Len() > 0 {
		m.playCurrentTrack()
	}
	return m
}

// NewPlayerListener constructs the Listener to pass into player.Options
// before calling player.New.
func NewPlayerListener() *playerState { return newPlayerState() }

// Init starts the tick timer and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages: key presses, ticks, and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.state.takeFinished() {
			m.nextTrack()
		}
		if code, ok := m.state.takeError(); ok {
			m.err = model.NewError(code)
		}
		m.titleOff++
		return m, tickCmd()

	case lyricsMsg:
		// Ignore a stale result if the user switched tracks meanwhile.
		if msg.track == m.lyricsTrack {
			m.lyricsLoading = false
			m.lyricsText = msg.lines
		}
	}

	return m, nil
}

// handleKey dispatches a key press to a playlist/EQ/transport action. Every
// action that affects playback goes through the Notifier; handleKey never
// calls into the Decoder/Sink/Analyzer.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.notifier.Exit()
		return nil

	case "tab":
		if m.focus == focusPlaylist {
			m.focus = focusEQ
		} else {
			m.focus = focusPlaylist
		}
		return nil

	case "l":
		if m.lyricsOpen {
			m.lyricsOpen = false
			return nil
		}
		return m.openLyrics()

	case "esc":
		m.lyricsOpen = false
		return nil

	case " ":
		m.notifier.PauseOrResume()
		return nil

	case "s":
		m.notifier.Stop()
		return nil

	case ">", "n":
		m.nextTrack()
		return nil
	case "<", "p":
		m.prevTrack()
		return nil

	case "left":
		if m.focus == focusEQ {
			if m.eqCursor > 0 {
				m.eqCursor--
			}
			return nil
		}
		m.notifier.SeekBackwardPosition(5)
		return nil
	case "right":
		if m.focus == focusEQ {
			if m.eqCursor < model.BandCount-1 {
				m.eqCursor++
			}
			return nil
		}
		m.notifier.SeekForwardPosition(5)
		return nil

	case "up":
		if m.lyricsOpen {
			if m.lyricsScroll > 0 {
				m.lyricsScroll--
			}
			return nil
		}
		if m.focus == focusEQ {
			m.preset = m.preset.SetBand(m.eqCursor, m.preset.Filters[m.eqCursor].Gain+1)
			m.notifier.ApplyAudioFilters(m.preset)
			return nil
		}
		if m.focus == focusPlaylist && m.plCursor > 0 {
			m.plCursor--
			m.adjustScroll()
		}
		return nil
	case "down":
		if m.lyricsOpen {
			if m.lyricsScroll < len(m.lyricsText)-1 {
				m.lyricsScroll++
			}
			return nil
		}
		if m.focus == focusEQ {
			m.preset = m.preset.SetBand(m.eqCursor, m.preset.Filters[m.eqCursor].Gain-1)
			m.notifier.ApplyAudioFilters(m.preset)
			return nil
		}
		if m.focus == focusPlaylist && m.plCursor < m.playlist.Len()-1 {
			m.plCursor++
			m.adjustScroll()
		}
		return nil

	case "enter":
		if m.focus == focusPlaylist {
			m.playlist.SetIndex(m.plCursor)
			m.playCurrentTrack()
		}
		return nil

	case "+", "=":
		m.volume = m.volume.Inc()
		m.notifier.SetVolume(m.volume)
		return nil
	case "-", "_":
		m.volume = m.volume.Dec()
		m.notifier.SetVolume(m.volume)
		return nil
	case "m":
		m.volume = m.volume.ToggleMute()
		m.notifier.SetVolume(m.volume)
		return nil

	case "r":
		m.playlist.CycleRepeat()
		return nil
	case "z":
		m.playlist.ToggleShuffle()
		return nil
	}

	return nil
}

// nextTrack advances to the next playlist track and starts playing it.
func (m *Model) nextTrack() {
	track, ok := m.playlist.Next()
	if !ok {
		m.notifier.Stop()
		return
	}
	m.plCursor = m.playlist.Index()
	m.adjustScroll()
	m.titleOff = 0
	m.notifier.Play(track.Song())
}

// prevTrack goes to the previous track, or restarts if >3s into the current one.
func (m *Model) prevTrack() {
	snap := m.state.snapshot()
	if snap.hasSong && snap.song.Current.Position > 3 {
		m.notifier.SeekBackwardPosition(int(snap.song.Current.Position) + 1)
		return
	}
	track, ok := m.playlist.Prev()
	if !ok {
		return
	}
	m.plCursor = m.playlist.Index()
	m.adjustScroll()
	m.titleOff = 0
	m.notifier.Play(track.Song())
}

// playCurrentTrack starts playing whatever track the playlist cursor points to.
func (m *Model) playCurrentTrack() {
	track, idx := m.playlist.Current()
	if idx < 0 {
		return
	}
	m.titleOff = 0
	m.notifier.Play(track.Song())
}

// openLyrics opens the lyrics panel and kicks off a search for the current
// track on a Bubbletea command goroutine; the network I/O never runs on
// the Update loop, and never anywhere near the audio loop.
func (m *Model) openLyrics() tea.Cmd {
	if m.lyrics == nil {
		return nil
	}
	track, idx := m.playlist.Current()
	if idx < 0 {
		return nil
	}
	m.lyricsOpen = true
	m.lyricsLoading = true
	m.lyricsScroll = 0
	m.lyricsText = nil
	m.lyricsTrack = track.DisplayName()

	finder := m.lyrics
	artist, title := track.Artist, track.Title
	name := m.lyricsTrack
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return lyricsMsg{track: name, lines: finder.Search(ctx, artist, title)}
	}
}

// adjustScroll ensures plCursor is visible in the playlist view.
func (m *Model) adjustScroll() {
	if m.plCursor < m.plScroll {
		m.plScroll = m.plCursor
	}
	if m.plCursor >= m.plScroll+m.plVisible {
		m.plScroll = m.plCursor - m.plVisible + 1
	}
}
