package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TrackFromPathParsesArtistTitle(t *testing.T) {
	tr := TrackFromPath("/music/Daft Punk - One More Time.mp3")
	assert.Equal(t, "Daft Punk", tr.Artist)
	assert.Equal(t, "One More Time", tr.Title)
}

func Test_TrackFromPathFallsBackToFilename(t *testing.T) {
	tr := TrackFromPath("/music/track01.mp3")
	assert.Equal(t, "", tr.Artist)
	assert.Equal(t, "track01", tr.Title)
}

func Test_TrackSongCarriesFilePath(t *testing.T) {
	tr := TrackFromPath("/music/a - b.mp3")
	song := tr.Song()
	assert.Equal(t, "/music/a - b.mp3", song.FilePath)
	assert.Equal(t, "a", song.Artist)
	assert.Equal(t, "b", song.Title)
}

func Test_PlaylistNextWrapsWithRepeatAll(t *testing.T) {
	p := New()
	p.Add(TrackFromPath("a.mp3"), TrackFromPath("b.mp3"))
	p.CycleRepeat() // Off -> All

	_, ok := p.Next()
	require.True(t, ok)
	_, ok = p.Next() // wraps back to track 0
	require.True(t, ok)
	assert.Equal(t, 0, p.Index())
}

func Test_PlaylistNextStopsAtEndWithRepeatOff(t *testing.T) {
	p := New()
	p.Add(TrackFromPath("a.mp3"), TrackFromPath("b.mp3"))

	_, ok := p.Next()
	require.True(t, ok)
	_, ok = p.Next()
	assert.False(t, ok)
}

func Test_PlaylistRepeatOneStaysOnSameTrack(t *testing.T) {
	p := New()
	p.Add(TrackFromPath("a.mp3"), TrackFromPath("b.mp3"))
	p.CycleRepeat() // Off -> All
	p.CycleRepeat() // All -> One

	track, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, "a", track.Title)
}

func Test_PlaylistToggleShuffleKeepsCurrentTrackFirst(t *testing.T) {
	p := New()
	p.Add(TrackFromPath("a.mp3"), TrackFromPath("b.mp3"), TrackFromPath("c.mp3"))
	p.SetIndex(1)

	p.ToggleShuffle()
	assert.True(t, p.Shuffled())
	cur, _ := p.Current()
	assert.Equal(t, "b", cur.Title)

	p.ToggleShuffle()
	assert.False(t, p.Shuffled())
	cur, _ = p.Current()
	assert.Equal(t, "b", cur.Title)
}
