package ui

import (
	"sync"

	"github.com/wk-j/cliamp/internal/model"
)

// playerState is the Listener the audio loop notifies (player.Listener);
// it is the only thing the UI goroutine and the audio-loop goroutine
// share, and every access is mutex-guarded. The Bubbletea Model polls a
// snapshot of it once per tick/render instead of calling into the Player
// directly, keeping the UI a pure consumer per the concurrency contract.
type playerState struct {
	mu       sync.Mutex
	hasSong  bool
	song     model.Song
	bars     []float64
	errCode  model.Code
	hasErr   bool
	finished bool
}

func newPlayerState() *playerState { return &playerState{} }

func (s *playerState) NotifySongInformation(song model.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.song = song
	s.hasSong = true
}

func (s *playerState) NotifySongState(ci model.CurrentInformation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.song.Current = ci
	// Latched: the audio loop clears song information right after the
	// Finished transition, faster than the UI's poll interval, so a bare
	// state comparison on the next tick would miss it.
	if ci.State == model.MediaFinished {
		s.finished = true
	}
}

func (s *playerState) SendAudioRaw(bars []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.bars) < len(bars) {
		s.bars = make([]float64, len(bars))
	}
	s.bars = s.bars[:len(bars)]
	copy(s.bars, bars)
}

func (s *playerState) ClearSongInformation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSong = false
	s.song = model.Song{}
}

func (s *playerState) NotifyError(code model.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errCode = code
	s.hasErr = true
}

// snapshot returns a point-in-time copy safe to read from the UI
// goroutine without holding any lock.
type snapshot struct {
	hasSong bool
	song    model.Song
	bars    []float64
}

func (s *playerState) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	bars := make([]float64, len(s.bars))
	copy(bars, s.bars)
	return snapshot{hasSong: s.hasSong, song: s.song, bars: bars}
}

// takeFinished consumes the latched end-of-song event, if any.
func (s *playerState) takeFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.finished
	s.finished = false
	return f
}

func (s *playerState) takeError() (model.Code, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasErr {
		return model.Success, false
	}
	s.hasErr = false
	return s.errCode, true
}
