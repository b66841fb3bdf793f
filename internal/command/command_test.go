package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/cliamp/internal/model"
)

func Test_QueueFIFOOrdering(t *testing.T) {
	q := NewQueue(8)
	q.Enqueue(PlayCommand(testSong("a")))
	q.Enqueue(PauseOrResumeCommand())
	q.Enqueue(StopCommand())

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, Play, first.ID)

	second, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, PauseOrResume, second.ID)

	third, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, Stop, third.ID)
}

func Test_QueueDequeueDrainsBeforeReportingExit(t *testing.T) {
	q := NewQueue(8)
	q.Enqueue(PlayCommand(testSong("a")))
	q.NotifyToExit()

	cmd, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, Play, cmd.ID)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func Test_QueueEnqueueAfterExitIsNoop(t *testing.T) {
	q := NewQueue(8)
	q.NotifyToExit()
	q.Enqueue(PlayCommand(testSong("a")))

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func Test_QueueNotifyToExitIsIdempotent(t *testing.T) {
	q := NewQueue(8)
	q.NotifyToExit()
	assert.NotPanics(t, func() { q.NotifyToExit() })
	assert.True(t, q.Exit())
}

func Test_QueueTryDequeueNonBlocking(t *testing.T) {
	q := NewQueue(8)
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	q.Enqueue(StopCommand())
	cmd, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, Stop, cmd.ID)
}

func Test_QueueEnqueueUnblocksOnExitEvenWhenFull(t *testing.T) {
	q := NewQueue(1)
	q.Enqueue(StopCommand()) // fills the buffer

	done := make(chan struct{})
	go func() {
		q.Enqueue(PlayCommand(testSong("blocked")))
		close(done)
	}()

	q.NotifyToExit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not unblock after NotifyToExit")
	}
}

func testSong(path string) model.Song {
	return model.Song{FilePath: path}
}
