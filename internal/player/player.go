// Package player implements the audio loop: the single long-running
// goroutine that owns the playback sink, the current decoder, and the
// spectrum analyzer, and that turns the asynchronous command queue into
// the Idle/Loading/Playing/Paused/Finished/Exiting state machine.
package player

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wk-j/cliamp/internal/analyzer"
	"github.com/wk-j/cliamp/internal/command"
	"github.com/wk-j/cliamp/internal/decoder"
	"github.com/wk-j/cliamp/internal/model"
	"github.com/wk-j/cliamp/internal/sink"
)

// State is the Player's state machine position.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Finished
	Exiting
)

func (s State) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	case Exiting:
		return "Exiting"
	default:
		return "Idle"
	}
}

// Listener receives the Player's notifications. All methods are
// fire-and-forget from the Player's point of view; implementations are
// expected to enqueue on their own queue rather than block, since the
// Player calls them inline from the audio loop and must not stall more
// than one period.
type Listener interface {
	NotifySongInformation(song model.Song)
	NotifySongState(ci model.CurrentInformation)
	SendAudioRaw(bars []float64)
	ClearSongInformation()
	NotifyError(code model.Code)
}

// NopListener discards every notification; used when no UI is attached
// (e.g. in tests).
type NopListener struct{}

func (NopListener) NotifySongInformation(model.Song)         {}
func (NopListener) NotifySongState(model.CurrentInformation) {}
func (NopListener) SendAudioRaw([]float64)                   {}
func (NopListener) ClearSongInformation()                    {}
func (NopListener) NotifyError(model.Code)                   {}

// Player owns the Sink, the current Decoder and the Analyzer, and runs the
// audio loop on its own goroutine.
type Player struct {
	queue    *command.Queue
	sink     sink.Sink
	analyzer *analyzer.Analyzer
	listener Listener
	log      *log.Logger

	barCount int

	state  atomic.Int32 // State; written by the loop, readable anywhere
	volume model.Volume
	preset model.Preset

	dec *decoder.FileDecoder

	done chan struct{}
}

// Options configures New.
type Options struct {
	QueueCapacity int
	BarCount      int // default 10
	Listener      Listener
	Logger        *log.Logger
	Sink          sink.Sink // nil selects the beep/speaker-backed default
}

// New wires up the Sink and Analyzer, then starts the audio loop
// goroutine. A configuration failure in the Sink is fatal: the error is
// reported, exit is set, and the audio loop is never started.
func New(opts Options) *Player {
	if opts.BarCount <= 0 {
		opts.BarCount = 10
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	q := command.NewQueue(opts.QueueCapacity)
	p := &Player{
		queue:    q,
		listener: opts.Listener,
		log:      logger,
		barCount: opts.BarCount,
		volume:   model.DefaultVolume(),
		preset:   model.NewCustomPreset(),
		done:     make(chan struct{}),
	}

	s := opts.Sink
	if s == nil {
		s = sink.New(0)
	}
	if r := s.CreateStream(); !r.Success() {
		p.fatal(r)
		return p
	}
	if r := s.ConfigureParameters(); !r.Success() {
		p.fatal(r)
		return p
	}
	if r := s.Prepare(); !r.Success() {
		p.fatal(r)
		return p
	}
	p.sink = s

	a, err := analyzer.Init(opts.BarCount, opts.BarCount*2)
	if err != nil {
		p.log.Error("analyzer init failed", "err", err)
		p.fatal(sink.Fail(model.UnknownError, err))
		return p
	}
	p.analyzer = a

	go p.run()
	return p
}

func (p *Player) fatal(r sink.Result) {
	p.listener.NotifyError(r.Code)
	p.queue.NotifyToExit()
	close(p.done)
}

// Enqueue forwards a command to the audio loop. Safe to call concurrently.
func (p *Player) Enqueue(cmd command.Command) { p.queue.Enqueue(cmd) }

// Wait blocks until the audio loop has fully exited.
func (p *Player) Wait() { <-p.done }

// State returns the current player state; safe to call concurrently, but
// it is only a snapshot.
func (p *Player) State() State { return State(p.state.Load()) }

func (p *Player) setState(s State) { p.state.Store(int32(s)) }

// run is the single audio-loop goroutine: owns the Sink, the Decoder and
// the Analyzer for its entire lifetime.
func (p *Player) run() {
	defer close(p.done)
	for {
		cmd, ok := p.queue.Dequeue()
		if !ok {
			p.exit()
			return
		}
		next := &cmd
		for next != nil {
			switch next.ID {
			case command.Exit:
				p.exit()
				return
			case command.Play:
				next = p.playSong(next.Song)
			default:
				p.applyIdleCommand(*next)
				next = nil
			}
		}
	}
}

// applyIdleCommand handles commands observed outside of Playing/Paused.
// Seek/Pause/Stop have no effect with nothing loaded; Volume/Filter
// updates still apply so they take effect on the next Play.
func (p *Player) applyIdleCommand(cmd command.Command) {
	switch cmd.ID {
	case command.SetVolume:
		p.volume = cmd.Volume
	case command.UpdateAudioFilters:
		p.preset = cmd.Preset
	case command.ResizeAnalysis:
		p.resizeAnalyzer(cmd.Offset)
	}
}

// resizeAnalyzer rebuilds the Analyzer for a new bar count; subsequent
// SendAudioRaw vectors carry bars*channels values.
func (p *Player) resizeAnalyzer(bars int) {
	if bars <= 0 || bars == p.barCount {
		return
	}
	a, err := analyzer.Init(bars, bars*2)
	if err != nil {
		p.log.Warn("analyzer resize failed", "bars", bars, "err", err)
		return
	}
	p.barCount = bars
	p.analyzer = a
}

// decodeOutcome is why the inner Decode() call returned.
type decodeOutcome int

const (
	outcomeEOF decodeOutcome = iota
	outcomeStop
	outcomeNewPlay
	outcomeExit
)

// playSong transitions Idle -> Loading -> Playing and runs the inner
// decode loop until it ends, returning a follow-up command observed
// mid-playback (a new Play, or Exit) for run() to act on, or nil.
func (p *Player) playSong(song model.Song) *command.Command {
	p.setState(Loading)

	dec := decoder.New(p.preset, p.log)
	openedSong, r := dec.OpenFile(song.FilePath)
	if !r.Success() {
		p.log.Warn("open file failed", "path", song.FilePath, "code", r.Code)
		p.listener.NotifyError(r.Code)
		p.setState(Idle)
		return nil
	}

	p.dec = dec
	p.dec.SetVolume(p.volume.Scalar())
	p.setState(Playing)
	p.queue.SetPlaying(true)
	p.queue.SetCurrentSong(&openedSong)
	p.listener.NotifySongInformation(openedSong)

	openedSong.Current = model.CurrentInformation{Position: 0, State: model.MediaPlay}
	p.listener.NotifySongState(openedSong.Current)

	var pending *command.Command
	outcome := outcomeEOF

	period := p.sink.GetPeriodSize()
	result := dec.Decode(period, func(chunk decoder.Chunk) bool {
		// A bare NotifyToExit (no Exit command enqueued) must still stop
		// the loop within one chunk.
		if p.queue.Exit() {
			outcome = outcomeExit
			return false
		}

		// Step 1: drain any pending commands without blocking.
		for {
			cmd, had := p.queue.TryDequeue()
			if !had {
				break
			}
			switch cmd.ID {
			case command.SetVolume:
				p.volume = cmd.Volume
				p.dec.SetVolume(p.volume.Scalar())
			case command.UpdateAudioFilters:
				p.preset = cmd.Preset
				p.dec.UpdateFilters(p.preset)
			case command.ResizeAnalysis:
				p.resizeAnalyzer(cmd.Offset)
			case command.PauseOrResume:
				resumed, interrupt := p.pauseAndWait(&openedSong)
				if interrupt != nil {
					switch interrupt.ID {
					case command.Play:
						outcome = outcomeNewPlay
						pending = interrupt
					default: // Stop, Exit
						if interrupt.ID == command.Exit {
							outcome = outcomeExit
						} else {
							outcome = outcomeStop
						}
					}
					return false
				}
				if !resumed {
					outcome = outcomeExit
					return false
				}
			case command.Stop:
				outcome = outcomeStop
				return false
			case command.Play:
				outcome = outcomeNewPlay
				pending = &cmd
				return false
			case command.SeekForward:
				if p.doSeek(float64(cmd.Offset), &openedSong) {
					return false
				}
			case command.SeekBackward:
				if p.doSeek(-float64(cmd.Offset), &openedSong) {
					return false
				}
			case command.Exit:
				outcome = outcomeExit
				return false
			}
		}

		// Step 2: write to the sink (blocking).
		if wr := p.sink.Write(chunk.Buf); !wr.Success() {
			p.log.Error("sink write failed", "code", wr.Code)
			outcome = outcomeExit
			return false
		}

		// Step 3: forward to the analyzer, publish bars.
		floats := make([]float64, chunk.Frames*2)
		for i := 0; i < chunk.Frames; i++ {
			floats[i*2] = float64(chunk.Buf[i*2]) / 32768.0
			floats[i*2+1] = float64(chunk.Buf[i*2+1]) / 32768.0
		}
		bars := make([]float64, p.analyzer.GetOutputSize())
		p.analyzer.Execute(floats, bars)
		p.listener.SendAudioRaw(bars)

		// Step 4: advance position, publish CurrentInformation.
		openedSong.Current.Position += float64(chunk.Frames) / float64(sinkSampleRate)
		openedSong.ClampPosition()
		p.listener.NotifySongState(openedSong.Current)

		return true
	})

	if !result.Success() {
		p.log.Warn("decode error", "code", result.Code)
		p.listener.NotifyError(result.Code)
		outcome = outcomeStop
	}

	if outcome == outcomeEOF && openedSong.Current.State != model.MediaFinished {
		// Natural end of stream, unless the last seek pushed us to
		// Finished already via doSeek's clamp.
		openedSong.Current.State = model.MediaFinished
		p.listener.NotifySongState(openedSong.Current)
	}

	dec.ClearCache()
	p.dec = nil
	p.queue.SetPlaying(false)
	p.queue.SetCurrentSong(nil)

	switch outcome {
	case outcomeExit:
		p.setState(Idle)
		return &command.Command{ID: command.Exit}
	case outcomeNewPlay:
		p.setState(Idle)
		return pending
	default:
		p.setState(Idle)
		p.listener.ClearSongInformation()
		return nil
	}
}

const sinkSampleRate = 44100

// pauseAndWait blocks the audio-loop goroutine until PauseOrResume
// arrives again, or Stop/Play/Exit interrupts the wait. When
// interrupt is non-nil, the caller must unwind Decode() using it instead of
// resuming; resumed is only meaningful when interrupt is nil, and is
// false only when the queue drained with exit already observed and no
// interrupting command was seen.
func (p *Player) pauseAndWait(song *model.Song) (resumed bool, interrupt *command.Command) {
	p.setState(Paused)
	song.Current.State = model.MediaPause
	p.listener.NotifySongState(song.Current)
	p.sink.Pause(true)
	defer p.sink.Pause(false)

	for {
		cmd, ok := p.queue.Dequeue()
		if !ok {
			return false, nil
		}
		switch cmd.ID {
		case command.PauseOrResume:
			p.setState(Playing)
			song.Current.State = model.MediaPlay
			p.listener.NotifySongState(song.Current)
			return true, nil
		case command.SetVolume:
			p.volume = cmd.Volume
			p.dec.SetVolume(p.volume.Scalar())
		case command.UpdateAudioFilters:
			p.preset = cmd.Preset
			p.dec.UpdateFilters(p.preset)
		case command.ResizeAnalysis:
			p.resizeAnalyzer(cmd.Offset)
		case command.SeekForward:
			if p.doSeek(float64(cmd.Offset), song) {
				return false, &command.Command{ID: command.Stop}
			}
		case command.SeekBackward:
			if p.doSeek(-float64(cmd.Offset), song) {
				return false, &command.Command{ID: command.Stop}
			}
		case command.Stop, command.Play, command.Exit:
			return false, &cmd
		}
	}
}

// doSeek re-opens the decoder at the clamped target position and reports
// whether the seek pushed the song past end-of-stream (Finished); callers
// must stop the inner decode loop when it returns true.
func (p *Player) doSeek(deltaSeconds float64, song *model.Song) bool {
	target := song.Current.Position + deltaSeconds
	if target < 0 {
		target = 0
	}
	if target >= song.Duration {
		song.Current.Position = song.Duration
		song.Current.State = model.MediaFinished
		p.listener.NotifySongState(song.Current)
		return true
	}
	if err := p.dec.SeekTo(target); err != nil {
		p.log.Warn("seek failed", "err", err)
		return false
	}
	song.Current.Position = target
	p.listener.NotifySongState(song.Current)
	return false
}

func (p *Player) exit() {
	p.setState(Exiting)
	if p.dec != nil {
		p.dec.ClearCache()
		p.dec = nil
	}
	if p.sink != nil {
		p.sink.Stop()
	}
	p.queue.SetPlaying(false)
}

// Close requests exit and waits for the audio loop to terminate (set
// exit, join the loop goroutine), giving up after two seconds.
func (p *Player) Close() {
	p.queue.NotifyToExit()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
	}
}
