package player

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/cliamp/internal/command"
	"github.com/wk-j/cliamp/internal/model"
	"github.com/wk-j/cliamp/internal/sink"
)

// fakeSink satisfies sink.Sink without touching a real audio device. With
// realtime set it paces Write at the device rate, which gives the audio
// loop realistic chunk boundaries to drain commands at.
type fakeSink struct {
	mu          sync.Mutex
	writes      int
	frames      int
	pauseCalls  int
	stopCalls   int
	peak        int16 // largest sample value written
	realtime    bool
	failPrepare bool
}

func (s *fakeSink) CreateStream() sink.Result        { return sink.Ok() }
func (s *fakeSink) ConfigureParameters() sink.Result { return sink.Ok() }

func (s *fakeSink) Prepare() sink.Result {
	if s.failPrepare {
		return sink.Fail(model.SetupAudioParamsFailed, nil)
	}
	return sink.Ok()
}

func (s *fakeSink) Pause(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paused {
		s.pauseCalls++
	}
}

func (s *fakeSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCalls++
}

func (s *fakeSink) Write(buf []int16) sink.Result {
	frames := len(buf) / sink.Channels
	s.mu.Lock()
	s.writes++
	s.frames += frames
	for _, v := range buf {
		if v > s.peak {
			s.peak = v
		}
	}
	realtime := s.realtime
	s.mu.Unlock()
	if realtime {
		time.Sleep(time.Duration(frames) * time.Second / 44100)
	}
	return sink.Ok()
}

func (s *fakeSink) SetVolume(float64)  {}
func (s *fakeSink) GetVolume() float64 { return 1.0 }
func (s *fakeSink) GetPeriodSize() int { return 882 }

func (s *fakeSink) paused() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauseCalls
}

// recListener records every notification the audio loop emits.
type recListener struct {
	mu         sync.Mutex
	songs      []model.Song
	states     []model.CurrentInformation
	bars       int
	lastBarLen int
	cleared    int
	errs       []model.Code
}

func (l *recListener) NotifySongInformation(song model.Song) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.songs = append(l.songs, song)
}

func (l *recListener) NotifySongState(ci model.CurrentInformation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, ci)
}

func (l *recListener) SendAudioRaw(bars []float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bars++
	l.lastBarLen = len(bars)
}

func (l *recListener) ClearSongInformation() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleared++
}

func (l *recListener) NotifyError(code model.Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, code)
}

func (l *recListener) sawState(state model.MediaState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ci := range l.states {
		if ci.State == state {
			return true
		}
	}
	return false
}

func (l *recListener) clearCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cleared
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for: %s", msg)
}

// writeToneWAV writes a PCM S16LE stereo 44.1 kHz WAV with a 440 Hz tone.
func writeToneWAV(t *testing.T, seconds float64) string {
	t.Helper()
	frames := int(seconds * 44100)
	data := make([]byte, 44+frames*4)
	copy(data[0:], "RIFF")
	binary.LittleEndian.PutUint32(data[4:], uint32(36+frames*4))
	copy(data[8:], "WAVE")
	copy(data[12:], "fmt ")
	binary.LittleEndian.PutUint32(data[16:], 16)
	binary.LittleEndian.PutUint16(data[20:], 1) // PCM
	binary.LittleEndian.PutUint16(data[22:], 2)
	binary.LittleEndian.PutUint32(data[24:], 44100)
	binary.LittleEndian.PutUint32(data[28:], 44100*4)
	binary.LittleEndian.PutUint16(data[32:], 4)
	binary.LittleEndian.PutUint16(data[34:], 16)
	copy(data[36:], "data")
	binary.LittleEndian.PutUint32(data[40:], uint32(frames*4))
	for i := 0; i < frames; i++ {
		v := int16(12000 * math.Sin(2*math.Pi*440*float64(i)/44100))
		binary.LittleEndian.PutUint16(data[44+i*4:], uint16(v))
		binary.LittleEndian.PutUint16(data[44+i*4+2:], uint16(v))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestPlayer(t *testing.T, fs *fakeSink) (*Player, *recListener) {
	t.Helper()
	l := &recListener{}
	p := New(Options{BarCount: 10, Listener: l, Sink: fs})
	t.Cleanup(p.Close)
	return p, l
}

func Test_PlayerHappyPathPlayToFinished(t *testing.T) {
	fs := &fakeSink{}
	p, l := newTestPlayer(t, fs)

	path := writeToneWAV(t, 0.4)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))

	waitFor(t, 5*time.Second, func() bool { return l.clearCount() > 0 }, "song finished and cleared")

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.songs, 1)
	assert.Equal(t, 2, l.songs[0].NumChannels)
	assert.InDelta(t, 0.4, l.songs[0].Duration, 0.05)
	assert.Greater(t, l.bars, 0, "analyzer bars should have been published")
	assert.Empty(t, l.errs)

	// Positions within the play segment are monotonically non-decreasing
	// and the final transition is Finished.
	prev := -1.0
	sawFinished := false
	for _, ci := range l.states {
		if ci.State == model.MediaPlay {
			assert.GreaterOrEqual(t, ci.Position, prev)
			prev = ci.Position
		}
		if ci.State == model.MediaFinished {
			sawFinished = true
		}
	}
	assert.True(t, sawFinished)
}

func Test_PlayerPauseAndResume(t *testing.T) {
	fs := &fakeSink{realtime: true}
	p, l := newTestPlayer(t, fs)

	path := writeToneWAV(t, 1.5)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))
	waitFor(t, 2*time.Second, func() bool { return l.sawState(model.MediaPlay) }, "playing")

	p.Enqueue(command.PauseOrResumeCommand())
	waitFor(t, 2*time.Second, func() bool { return l.sawState(model.MediaPause) }, "paused")
	assert.Equal(t, 1, fs.paused())

	p.Enqueue(command.PauseOrResumeCommand())
	waitFor(t, 2*time.Second, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return len(l.states) > 0 && l.states[len(l.states)-1].State == model.MediaPlay
	}, "resumed")

	p.Enqueue(command.StopCommand())
	waitFor(t, 2*time.Second, func() bool { return l.clearCount() > 0 }, "stopped and cleared")
}

func Test_PlayerSeekForwardPastEndFinishes(t *testing.T) {
	fs := &fakeSink{realtime: true}
	p, l := newTestPlayer(t, fs)

	path := writeToneWAV(t, 1.5)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))
	waitFor(t, 2*time.Second, func() bool { return l.sawState(model.MediaPlay) }, "playing")

	p.Enqueue(command.SeekForwardCommand(60))
	waitFor(t, 2*time.Second, func() bool { return l.clearCount() > 0 }, "finished and cleared")
	assert.True(t, l.sawState(model.MediaFinished))
}

func Test_PlayerRapidPlayStopReturnsToIdle(t *testing.T) {
	fs := &fakeSink{realtime: true}
	p, l := newTestPlayer(t, fs)

	path := writeToneWAV(t, 1.5)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))
	p.Enqueue(command.StopCommand())

	waitFor(t, 2*time.Second, func() bool { return l.clearCount() > 0 }, "cleared after stop")
	waitFor(t, 2*time.Second, func() bool { return p.State() == Idle }, "back to idle")
}

func Test_PlayerOpenErrorReportsAndStaysIdle(t *testing.T) {
	fs := &fakeSink{}
	p, l := newTestPlayer(t, fs)

	p.Enqueue(command.PlayCommand(model.Song{FilePath: "/nonexistent/file.mp3"}))

	waitFor(t, 2*time.Second, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return len(l.errs) > 0
	}, "open error reported")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Equal(t, model.InvalidFile, l.errs[0])
	assert.Empty(t, l.songs)
}

func Test_PlayerExitDuringPlayJoinsLoop(t *testing.T) {
	fs := &fakeSink{realtime: true}
	l := &recListener{}
	p := New(Options{BarCount: 10, Listener: l, Sink: fs})

	path := writeToneWAV(t, 1.5)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))
	waitFor(t, 2*time.Second, func() bool { return l.sawState(model.MediaPlay) }, "playing")

	p.Enqueue(command.ExitCommand())
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("audio loop did not exit after Exit command")
	}
	assert.Equal(t, Exiting, p.State())
}

func Test_PlayerSinkSetupFailureIsFatal(t *testing.T) {
	fs := &fakeSink{failPrepare: true}
	l := &recListener{}
	p := New(Options{BarCount: 10, Listener: l, Sink: fs})

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fatal sink setup should close the player immediately")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.errs, 1)
	assert.Equal(t, model.SetupAudioParamsFailed, l.errs[0])
}

func Test_NotifierMapsOneToOneOntoCommands(t *testing.T) {
	q := command.NewQueue(16)
	n := &Notifier{queue: q}

	n.NotifyFileSelection("/music/a.mp3")
	n.PauseOrResume()
	n.SeekForwardPosition(7)
	n.SeekBackwardPosition(3)
	n.SetVolume(model.NewVolume(0.5))
	n.ApplyAudioFilters(model.NewCustomPreset())
	n.ResizeAnalysisOutput(20)
	n.ClearCurrentSong()

	want := []command.Identifier{
		command.Play, command.PauseOrResume, command.SeekForward,
		command.SeekBackward, command.SetVolume, command.UpdateAudioFilters,
		command.ResizeAnalysis, command.Stop,
	}
	for _, id := range want {
		cmd, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, id, cmd.ID)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func Test_PlayerResizeAnalysisChangesBarVectorLength(t *testing.T) {
	fs := &fakeSink{}
	p, l := newTestPlayer(t, fs)

	p.Enqueue(command.ResizeAnalysisCommand(20))
	path := writeToneWAV(t, 0.2)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))

	waitFor(t, 5*time.Second, func() bool { return l.clearCount() > 0 }, "finished")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Equal(t, 40, l.lastBarLen, "20 bars x 2 channels")
}

func Test_PlayerVolumeAppliedBeforePlay(t *testing.T) {
	fs := &fakeSink{}
	p, l := newTestPlayer(t, fs)

	p.Enqueue(command.SetVolumeCommand(model.NewVolume(0.3)))
	path := writeToneWAV(t, 0.2)
	p.Enqueue(command.PlayCommand(model.Song{FilePath: path}))

	waitFor(t, 5*time.Second, func() bool { return l.clearCount() > 0 }, "finished")
	assert.Empty(t, func() []model.Code {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.errs
	}())

	// The fixture's tone peaks near 12000; at 30% volume the written
	// samples peak near 3600.
	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.InDelta(t, 3600, float64(fs.peak), 100)
}
