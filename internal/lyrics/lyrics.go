// Package lyrics implements the Lyric Finder: fetch a search engine's
// result page for "<artist> <title> lyrics" and scrape the lyric text out
// of the returned HTML, trying each configured engine in order until one
// yields a non-empty result.
package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// SongLyric is the lyric text, one entry per line/paragraph.
type SongLyric []string

func (s SongLyric) Empty() bool { return len(s) == 0 }

func (s SongLyric) String() string { return strings.Join(s, "\n") }

// UrlFetcher fetches raw content from a URL. The concrete implementation
// below uses net/http; tests substitute a fake.
type UrlFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HtmlParser extracts text nodes matching a selector out of an HTML
// document's body.
type HtmlParser interface {
	Parse(data, selector string) (SongLyric, error)
}

// Engine is one search-engine configuration: where to search, how to
// select the relevant DOM nodes, and how to clean the text once found.
type Engine interface {
	Name() string
	FormatSearchURL(artist, title string) string
	Selector() string
	FormatLyrics(raw SongLyric) SongLyric
}

// -------------------------------------------------------------------------
// Built-in engines

type googleEngine struct{}

func (googleEngine) Name() string { return "Google" }
func (googleEngine) FormatSearchURL(artist, title string) string {
	q := fmt.Sprintf("%s %s lyrics", artist, title)
	return "https://www.google.com/search?q=" + urlEncode(q)
}

// Selector targets Google's plain-text answer-box class.
func (googleEngine) Selector() string { return "div.BNeawe.tAd8D.AP7Wnd" }

func (googleEngine) FormatLyrics(raw SongLyric) SongLyric {
	return cleanLines(raw)
}

type azLyricsEngine struct{}

func (azLyricsEngine) Name() string { return "AZLyrics" }
func (azLyricsEngine) FormatSearchURL(artist, title string) string {
	slug := strings.ToLower(strings.ReplaceAll(stripNonAlnum(artist), " ", ""))
	song := strings.ToLower(strings.ReplaceAll(stripNonAlnum(title), " ", ""))
	return fmt.Sprintf("https://www.azlyrics.com/lyrics/%s/%s.html", slug, song)
}

// Selector targets the div immediately after the "ringtone" marker div.
func (azLyricsEngine) Selector() string { return "div.ringtone+div" }

func (azLyricsEngine) FormatLyrics(raw SongLyric) SongLyric {
	return cleanLines(raw)
}

func cleanLines(raw SongLyric) SongLyric {
	out := make(SongLyric, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func urlEncode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' {
			b.WriteByte('+')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DefaultEngines mirrors SearchConfig::Create(): the fixed, ordered list
// of search engines to try.
func DefaultEngines() []Engine {
	return []Engine{googleEngine{}, azLyricsEngine{}}
}

// -------------------------------------------------------------------------
// HTTP fetcher

// HTTPFetcher is the net/http-backed UrlFetcher.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 8 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cliamp/1.0)")
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics: fetch %s: status %d", url, resp.StatusCode)
	}
	var b strings.Builder
	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			b.Write(buf[:n])
		}
		if rerr != nil {
			break
		}
	}
	return b.String(), nil
}

// -------------------------------------------------------------------------
// HTML scraping backend, x/net/html-based

// HTMLParser walks an x/net/html document tree and pulls text out of nodes
// matching a CSS-like "tag.class1.class2" or "tag.class+div" selector.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser { return &HTMLParser{} }

func (p *HTMLParser) Parse(data, selector string) (SongLyric, error) {
	doc, err := html.Parse(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lyrics: parse html: %w", err)
	}

	tag, classes, sibling := parseSelector(selector)

	var out SongLyric
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && matchesNode(n, tag, classes) {
			target := n
			if sibling {
				target = n.NextSibling
				for target != nil && target.Type != html.ElementNode {
					target = target.NextSibling
				}
			}
			if target != nil {
				if text := strings.TrimSpace(textContent(target)); text != "" {
					out = append(out, text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// parseSelector understands two shapes used by DefaultEngines:
// "tag.class1.class2" (select matching nodes) and "tag.class+div" (select
// the next element sibling following a matching node).
func parseSelector(selector string) (tag string, classes []string, sibling bool) {
	if idx := strings.Index(selector, "+"); idx >= 0 {
		sibling = true
		selector = selector[:idx]
	}
	parts := strings.Split(selector, ".")
	tag = parts[0]
	if len(parts) > 1 {
		classes = parts[1:]
	}
	return tag, classes, sibling
}

func matchesNode(n *html.Node, tag string, classes []string) bool {
	if tag != "" && n.Data != tag {
		return false
	}
	if len(classes) == 0 {
		return true
	}
	var classAttr string
	for _, a := range n.Attr {
		if a.Key == "class" {
			classAttr = a.Val
			break
		}
	}
	nodeClasses := strings.Fields(classAttr)
	for _, want := range classes {
		found := false
		for _, have := range nodeClasses {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// -------------------------------------------------------------------------
// LyricFinder

// LyricFinder searches configured engines in order, stopping at the first
// one that yields non-empty, formatted lyrics.
type LyricFinder struct {
	fetcher UrlFetcher
	parser  HtmlParser
	engines []Engine
	log     *log.Logger
}

// New constructs a LyricFinder. A nil fetcher/parser falls back to the
// net/http + x/net/html backends.
func New(fetcher UrlFetcher, parser HtmlParser, logger *log.Logger) *LyricFinder {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	if parser == nil {
		parser = NewHTMLParser()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LyricFinder{fetcher: fetcher, parser: parser, engines: DefaultEngines(), log: logger}
}

// Search tries each engine in order, returning the first non-empty,
// formatted lyric result. Returns an empty SongLyric if none succeed.
func (f *LyricFinder) Search(ctx context.Context, artist, title string) SongLyric {
	f.log.Debug("searching lyrics", "artist", artist, "title", title)
	for _, engine := range f.engines {
		url := engine.FormatSearchURL(artist, title)
		buffer, err := f.fetcher.Fetch(ctx, url)
		if err != nil {
			f.log.Warn("fetch failed", "engine", engine.Name(), "err", err)
			continue
		}

		raw, err := f.parser.Parse(buffer, engine.Selector())
		if err != nil || raw.Empty() {
			continue
		}
		if formatted := engine.FormatLyrics(raw); !formatted.Empty() {
			f.log.Debug("found lyrics", "engine", engine.Name())
			return formatted
		}
	}
	return nil
}
