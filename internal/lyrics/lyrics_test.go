package lyrics

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	fail map[string]bool
	body map[string]string
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.fail[url] {
		return "", errors.New("boom")
	}
	return f.body[url], nil
}

type fakeParser struct {
	result map[string]SongLyric
}

func (f fakeParser) Parse(data, selector string) (SongLyric, error) {
	return f.result[data], nil
}

func Test_SearchStopsAtFirstEngineWithLyrics(t *testing.T) {
	googleURL := googleEngine{}.FormatSearchURL("Daft Punk", "One More Time")

	lf := &LyricFinder{
		fetcher: fakeFetcher{body: map[string]string{googleURL: "google-body"}},
		parser:  fakeParser{result: map[string]SongLyric{"google-body": {"line one", "line two"}}},
		engines: DefaultEngines(),
		log:     log.Default(),
	}

	got := lf.Search(context.Background(), "Daft Punk", "One More Time")
	require.False(t, got.Empty())
	assert.Equal(t, SongLyric{"line one", "line two"}, got)
}

func Test_SearchFallsThroughToNextEngineOnFetchFailure(t *testing.T) {
	googleURL := googleEngine{}.FormatSearchURL("Daft Punk", "One More Time")
	azURL := azLyricsEngine{}.FormatSearchURL("Daft Punk", "One More Time")

	lf := &LyricFinder{
		fetcher: fakeFetcher{
			fail: map[string]bool{googleURL: true},
			body: map[string]string{azURL: "az-body"},
		},
		parser:  fakeParser{result: map[string]SongLyric{"az-body": {"fallback lyrics"}}},
		engines: DefaultEngines(),
		log:     log.Default(),
	}

	got := lf.Search(context.Background(), "Daft Punk", "One More Time")
	require.False(t, got.Empty())
	assert.Equal(t, SongLyric{"fallback lyrics"}, got)
}

func Test_SearchFallsThroughOnEmptyParseResult(t *testing.T) {
	googleURL := googleEngine{}.FormatSearchURL("Artist", "Title")
	azURL := azLyricsEngine{}.FormatSearchURL("Artist", "Title")

	lf := &LyricFinder{
		fetcher: fakeFetcher{body: map[string]string{googleURL: "empty-body", azURL: "az-body"}},
		parser: fakeParser{result: map[string]SongLyric{
			"empty-body": nil,
			"az-body":    {"real lyrics"},
		}},
		engines: DefaultEngines(),
		log:     log.Default(),
	}

	got := lf.Search(context.Background(), "Artist", "Title")
	require.False(t, got.Empty())
	assert.Equal(t, SongLyric{"real lyrics"}, got)
}

func Test_SearchReturnsEmptyWhenNoEngineSucceeds(t *testing.T) {
	lf := &LyricFinder{
		fetcher: fakeFetcher{},
		parser:  fakeParser{result: map[string]SongLyric{}},
		engines: DefaultEngines(),
		log:     log.Default(),
	}

	got := lf.Search(context.Background(), "Nobody", "Nothing")
	assert.True(t, got.Empty())
}

func Test_CleanLinesDropsBlankAndTrimsWhitespace(t *testing.T) {
	in := SongLyric{"  hello  ", "", "   ", "world"}
	out := cleanLines(in)
	assert.Equal(t, SongLyric{"hello", "world"}, out)
}

func Test_HTMLParserMatchesClassSelector(t *testing.T) {
	p := NewHTMLParser()
	doc := `<html><body><div class="BNeawe tAd8D AP7Wnd">some lyric text</div></body></html>`
	got, err := p.Parse(doc, "div.BNeawe.tAd8D.AP7Wnd")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "some lyric text", got[0])
}

func Test_HTMLParserMatchesSiblingSelector(t *testing.T) {
	p := NewHTMLParser()
	doc := `<html><body><div class="ringtone">x</div><div>actual lyrics here</div></body></html>`
	got, err := p.Parse(doc, "div.ringtone+div")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "actual lyrics here", got[0])
}
