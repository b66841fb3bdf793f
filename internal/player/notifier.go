package player

import (
	"github.com/wk-j/cliamp/internal/command"
	"github.com/wk-j/cliamp/internal/model"
)

// Notifier is the producer-side API the UI calls. Each method maps
// one-to-one onto a Command enqueue; none of them ever touches the Sink,
// Decoder or Analyzer, which stay exclusive to the audio-loop goroutine.
type Notifier struct {
	queue *command.Queue
}

// Notifier returns the enqueue-only handle producers use to drive the
// audio loop.
func (p *Player) Notifier() *Notifier { return &Notifier{queue: p.queue} }

// NotifyFileSelection requests playback of the file at path. The decoder
// fills in the song's metadata once it opens the file.
func (n *Notifier) NotifyFileSelection(path string) {
	n.queue.Enqueue(command.PlayCommand(model.Song{FilePath: path}))
}

// Play requests playback of an already-described song (playlist entries
// carry artist/title parsed from the filename).
func (n *Notifier) Play(song model.Song) {
	n.queue.Enqueue(command.PlayCommand(song))
}

// ClearCurrentSong stops playback and releases the current song; the
// audio loop follows up with ClearSongInformation.
func (n *Notifier) ClearCurrentSong() {
	n.queue.Enqueue(command.StopCommand())
}

func (n *Notifier) PauseOrResume() {
	n.queue.Enqueue(command.PauseOrResumeCommand())
}

func (n *Notifier) Stop() {
	n.queue.Enqueue(command.StopCommand())
}

func (n *Notifier) SetVolume(v model.Volume) {
	n.queue.Enqueue(command.SetVolumeCommand(v))
}

// ResizeAnalysisOutput changes the spectrum bar count; subsequent
// SendAudioRaw vectors carry bars*channels values.
func (n *Notifier) ResizeAnalysisOutput(bars int) {
	n.queue.Enqueue(command.ResizeAnalysisCommand(bars))
}

func (n *Notifier) SeekForwardPosition(seconds int) {
	n.queue.Enqueue(command.SeekForwardCommand(seconds))
}

func (n *Notifier) SeekBackwardPosition(seconds int) {
	n.queue.Enqueue(command.SeekBackwardCommand(seconds))
}

func (n *Notifier) ApplyAudioFilters(preset model.Preset) {
	n.queue.Enqueue(command.UpdateFiltersCommand(preset))
}

// Exit asks the audio loop to shut down; it is sticky and unblocks any
// waiting dequeue.
func (n *Notifier) Exit() {
	n.queue.Enqueue(command.ExitCommand())
	n.queue.NotifyToExit()
}
