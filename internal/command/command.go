// Package command implements the bounded command channel that is the only
// synchronization surface between producer goroutines (the UI) and the
// audio loop. A buffered channel gives FIFO ordering and blocking-send
// "never drops" semantics; a closed done channel gives NotifyToExit its
// broadcast-style wakeup.
package command

import (
	"sync/atomic"

	"github.com/wk-j/cliamp/internal/model"
)

// Identifier tags the kind of command; payload shape depends on it.
type Identifier int

const (
	None Identifier = iota
	Play
	PauseOrResume
	Stop
	SeekForward
	SeekBackward
	SetVolume
	UpdateAudioFilters
	ResizeAnalysis
	Exit
)

// Command is a tagged value. Equality (Equal) compares only the
// identifier; payloads are ignored.
type Command struct {
	ID Identifier

	// Exactly one of the following is populated, depending on ID.
	Song   model.Song
	Offset int // seconds for SeekForward/SeekBackward, bars for ResizeAnalysis
	Volume model.Volume
	Preset model.Preset
}

func (c Command) Equal(other Command) bool { return c.ID == other.ID }

func PlayCommand(song model.Song) Command     { return Command{ID: Play, Song: song} }
func PauseOrResumeCommand() Command           { return Command{ID: PauseOrResume} }
func StopCommand() Command                    { return Command{ID: Stop} }
func SeekForwardCommand(seconds int) Command  { return Command{ID: SeekForward, Offset: seconds} }
func SeekBackwardCommand(seconds int) Command { return Command{ID: SeekBackward, Offset: seconds} }
func SetVolumeCommand(v model.Volume) Command { return Command{ID: SetVolume, Volume: v} }
func UpdateFiltersCommand(p model.Preset) Command {
	return Command{ID: UpdateAudioFilters, Preset: p}
}
func ResizeAnalysisCommand(bars int) Command { return Command{ID: ResizeAnalysis, Offset: bars} }
func ExitCommand() Command                   { return Command{ID: Exit} }

// Queue is a bounded FIFO of Commands with blocking-producer semantics,
// plus the play/exit flags and the current-song handle shared with
// producers. exit is monotonic: once set by NotifyToExit it never returns
// to false.
type Queue struct {
	ch   chan Command
	done chan struct{}

	play atomic.Bool
	exit atomic.Bool

	curSong atomic.Pointer[model.Song]
}

// NewQueue creates a command queue with the given capacity; 64 is a
// generous producer-side buffer before Enqueue would block.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{
		ch:   make(chan Command, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue pushes a command, blocking if the queue is full. It never drops.
// Enqueueing after NotifyToExit is a no-op: the command is not sent,
// since Exit is sticky and no further commands will be processed.
func (q *Queue) Enqueue(cmd Command) {
	if q.exit.Load() {
		return
	}
	select {
	case q.ch <- cmd:
	case <-q.done:
	}
}

// Dequeue waits for either a command or exit notification. ok is false
// only when exit was observed and no more commands remain.
func (q *Queue) Dequeue() (cmd Command, ok bool) {
	select {
	case cmd = <-q.ch:
		return cmd, true
	case <-q.done:
		select {
		case cmd = <-q.ch:
			return cmd, true
		default:
			return Command{}, false
		}
	}
}

// TryDequeue is a non-blocking Dequeue, used by the audio loop's decode
// callback to drain pending commands between chunks without stalling
// playback waiting for one.
func (q *Queue) TryDequeue() (cmd Command, ok bool) {
	select {
	case cmd = <-q.ch:
		return cmd, true
	default:
		return Command{}, false
	}
}

// NotifyToExit sets exit and unblocks any goroutine waiting in Dequeue or
// Enqueue. Idempotent.
func (q *Queue) NotifyToExit() {
	if q.exit.CompareAndSwap(false, true) {
		close(q.done)
	}
}

func (q *Queue) Exit() bool { return q.exit.Load() }

func (q *Queue) SetPlaying(v bool) { q.play.Store(v) }
func (q *Queue) Playing() bool     { return q.play.Load() }

// SetCurrentSong stores a read-only snapshot of the song now playing, or
// nil when none is playing.
func (q *Queue) SetCurrentSong(s *model.Song) { q.curSong.Store(s) }
func (q *Queue) CurrentSong() *model.Song     { return q.curSong.Load() }
