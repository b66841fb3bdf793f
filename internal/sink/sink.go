// Package sink implements the playback sink: the component that owns the
// OS audio device and exposes a blocking Write of S16 interleaved stereo
// frames. The device itself is `gopxl/beep/speaker`, which exposes
// a pull-based Streamer API rather than a push/blocking-write one (ALSA's
// snd_pcm_writei shape); pushStreamer below bridges the two by handing
// fixed-size write requests to the speaker's mixer goroutine and blocking
// the caller until they have been fully consumed.
package sink

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/wk-j/cliamp/internal/model"
)

// Fixed output format, never reconfigured during a run.
const (
	Channels   = 2
	SampleRate = beep.SampleRate(44100)
)

// Result carries either success or a specific failure Code.
type Result struct {
	Code model.Code
	Err  error
}

func Ok() Result                             { return Result{Code: model.Success} }
func Fail(code model.Code, err error) Result { return Result{Code: code, Err: err} }
func (r Result) Success() bool               { return r.Code == model.Success }

// Sink is the playback device contract.
type Sink interface {
	CreateStream() Result
	ConfigureParameters() Result
	Prepare() Result
	Pause(paused bool)
	Stop()
	Write(buf []int16) Result
	SetVolume(v float64)
	GetVolume() float64
	GetPeriodSize() int
}

type writeRequest struct {
	frames []int16 // interleaved L,R int16
	done   chan struct{}
}

// pushStreamer adapts blocking Write() calls into beep's pull-based
// Streamer interface.
type pushStreamer struct {
	mu     sync.Mutex
	reqCh  chan *writeRequest
	cur    *writeRequest
	curPos int // frame index within cur
	paused bool
	closed bool
}

func newPushStreamer() *pushStreamer {
	return &pushStreamer{reqCh: make(chan *writeRequest)}
}

func (s *pushStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	s.mu.Lock()
	paused := s.paused
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return 0, false
	}
	if paused {
		for i := range samples {
			samples[i][0], samples[i][1] = 0, 0
		}
		return len(samples), true
	}

	filled := 0
	for filled < len(samples) {
		if s.cur == nil {
			req, open := <-s.reqCh
			if !open {
				return filled, filled > 0
			}
			s.cur = req
			s.curPos = 0
		}
		frameCount := len(s.cur.frames) / Channels
		for s.curPos < frameCount && filled < len(samples) {
			l := float64(s.cur.frames[s.curPos*2]) / 32768.0
			r := float64(s.cur.frames[s.curPos*2+1]) / 32768.0
			samples[filled][0] = l
			samples[filled][1] = r
			s.curPos++
			filled++
		}
		if s.curPos >= frameCount {
			close(s.cur.done)
			s.cur = nil
		}
	}
	return filled, true
}

func (s *pushStreamer) Err() error { return nil }

// speakerSink is the beep/speaker-backed implementation of Sink.
type speakerSink struct {
	mu         sync.Mutex
	period     int
	streamer   *pushStreamer
	configured bool
	volume     float64 // inoperative: kept for API completeness, see DESIGN.md
}

// New constructs a Sink targeting the fixed output format. periodHint, if
// positive, overrides the default ~20ms period.
func New(periodHint int) Sink {
	period := periodHint
	if period <= 0 {
		period = SampleRate.N(20 * time.Millisecond)
	}
	return &speakerSink{period: period, volume: 1.0}
}

func (s *speakerSink) CreateStream() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamer = newPushStreamer()
	return Ok()
}

func (s *speakerSink) ConfigureParameters() Result {
	// Fixed params: device "default", 2ch, 44100Hz, S16LE, interleaved.
	// Nothing further to validate on the beep backend; present so stream
	// setup stays an explicit multi-step sequence.
	return Ok()
}

func (s *speakerSink) Prepare() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		s.streamer = newPushStreamer()
	}
	if err := speaker.Init(SampleRate, s.period); err != nil {
		return Fail(model.SetupAudioParamsFailed, err)
	}
	s.configured = true
	speaker.Play(s.streamer)
	return Ok()
}

func (s *speakerSink) Pause(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return
	}
	speaker.Lock()
	s.streamer.mu.Lock()
	s.streamer.paused = paused
	s.streamer.mu.Unlock()
	speaker.Unlock()
}

func (s *speakerSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return
	}
	speaker.Lock()
	if s.streamer.cur != nil {
		close(s.streamer.cur.done)
		s.streamer.cur = nil
	}
	s.streamer.paused = false
	speaker.Unlock()
}

// Write blocks until buf has been fully accepted by the device. It
// attempts exactly one xrun recovery (re-init the stream) on failure and
// reports success even if frames were dropped during that recovery; the
// audible hiccup is preferable to aborting the song.
func (s *speakerSink) Write(buf []int16) Result {
	s.mu.Lock()
	streamer := s.streamer
	configured := s.configured
	s.mu.Unlock()

	if !configured || streamer == nil {
		return Fail(model.SetupAudioParamsFailed, nil)
	}

	req := &writeRequest{frames: buf, done: make(chan struct{})}

	ok := trySend(streamer.reqCh, req)
	if !ok {
		// One recovery attempt: re-create the stream and resubmit.
		if r := s.Prepare(); !r.Success() {
			return r
		}
		s.mu.Lock()
		streamer = s.streamer
		s.mu.Unlock()
		req = &writeRequest{frames: buf, done: make(chan struct{})}
		if !trySend(streamer.reqCh, req) {
			return Ok() // frames dropped during recovery
		}
	}
	<-req.done
	return Ok()
}

func trySend(ch chan *writeRequest, req *writeRequest) bool {
	select {
	case ch <- req:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

// SetVolume/GetVolume are inoperative: volume ownership lives in
// internal/decoder, next to the filter chain, not in the sink.
func (s *speakerSink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *speakerSink) GetVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *speakerSink) GetPeriodSize() int { return s.period }
