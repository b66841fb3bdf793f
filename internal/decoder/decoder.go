// Package decoder opens a local audio file, demuxes/decodes it to PCM,
// resamples to the fixed output format, and applies volume + the biquad
// EQ chain inline before handing chunks to the caller's callback.
package decoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/wk-j/cliamp/internal/model"
	"github.com/wk-j/cliamp/internal/sink"
)

// Chunk is one buffer of decoded, filtered, S16LE-interleaved-stereo PCM,
// sized to the caller-requested period. The decoder yields a lazy sequence
// of chunks and never mutates a shared position variable; advancing the
// play position is the caller's (Player's) job.
type Chunk struct {
	Buf    []int16
	Frames int
}

// AudioCallback is invoked once per decoded chunk. Returning false stops
// decoding promptly; the Decoder guarantees it will not invoke the
// callback again for the current Decode call after that.
type AudioCallback func(Chunk) (cont bool)

// Decoder opens a file and pumps filtered PCM chunks to a callback.
type Decoder interface {
	OpenFile(path string) (model.Song, sink.Result)
	Decode(maxSamplesPerChunk int, cb AudioCallback) sink.Result
	ClearCache()
	SetVolume(v float64)
	GetVolume() float64
	UpdateFilters(p model.Preset)
}

type seekStreamer interface {
	beep.StreamSeekCloser
}

// FileDecoder is the concrete Decoder, dispatching on file extension to a
// gopxl/beep container decoder or to the ADTS/AAC adapter.
type FileDecoder struct {
	raw      seekStreamer
	format   beep.Format
	pipeline beep.Streamer
	filters  *filterChain
	fstream  *filterStreamer
	path     string
	log      *log.Logger
}

// New constructs an unopened decoder. initialPreset seeds the biquad
// chain; it is typically model.NewCustomPreset() (flat).
func New(initialPreset model.Preset, logger *log.Logger) *FileDecoder {
	if logger == nil {
		logger = log.Default()
	}
	return &FileDecoder{log: logger, filters: newFilterChain(float64(sink.SampleRate), initialPreset)}
}

func (d *FileDecoder) OpenFile(path string) (model.Song, sink.Result) {
	f, err := os.Open(path)
	if err != nil {
		return model.Song{}, sink.Fail(model.InvalidFile, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var (
		streamer seekStreamer
		format   beep.Format
	)

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".aac", ".m4a":
		var aacS *aacStreamer
		aacS, err = newAACStreamer(f)
		if err == nil {
			aacS.total = adtsFrameCount(f) * aacFrameSamples
			streamer = aacS
			format = beep.Format{SampleRate: beep.SampleRate(aacS.sampleRate), NumChannels: aacS.channels, Precision: 2}
		}
	default:
		f.Close()
		return model.Song{}, sink.Fail(model.FileNotSupported, fmt.Errorf("unsupported extension %q", ext))
	}

	if err != nil {
		f.Close()
		return model.Song{}, sink.Fail(model.InvalidFile, err)
	}

	numChannels := format.NumChannels
	// Channel layout from count: 1 is mono, 2 is stereo, else error.
	if numChannels != 1 && numChannels != 2 {
		streamer.Close()
		f.Close()
		return model.Song{}, sink.Fail(model.UnknownNumOfChannels, nil)
	}

	d.raw = streamer
	d.format = format
	d.path = path

	var s beep.Streamer = streamer
	if format.SampleRate != sink.SampleRate {
		s = beep.Resample(4, format.SampleRate, sink.SampleRate, s)
	}
	d.fstream = newFilterStreamer(s, d.filters, 1.0)
	d.pipeline = d.fstream

	artist, title := parseArtistTitle(path)
	song := model.Song{
		FilePath:    path,
		Artist:      artist,
		Title:       title,
		NumChannels: numChannels,
		SampleRate:  int(format.SampleRate),
		BitDepth:    format.Precision * 8,
		Duration:    format.SampleRate.D(streamer.Len()).Seconds(),
	}
	if info, serr := os.Stat(path); serr == nil && song.Duration > 0 {
		song.BitRate = int(float64(info.Size()*8) / song.Duration)
	}
	d.log.Debug("opened file", "path", path, "channels", numChannels, "duration", song.Duration)
	return song, sink.Ok()
}

func parseArtistTitle(path string) (artist, title string) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(name, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", name
}

// Decode drives the pull loop: read a chunk from the pipeline, hand it to
// cb. Returns success when the stream is exhausted or cb asks to stop.
func (d *FileDecoder) Decode(maxSamplesPerChunk int, cb AudioCallback) sink.Result {
	if d.pipeline == nil {
		return sink.Fail(model.CorruptedData, nil)
	}
	buf := make([][2]float64, maxSamplesPerChunk)
	for {
		n, ok := d.pipeline.Stream(buf)
		if n > 0 {
			out := make([]int16, n*sink.Channels)
			for i := 0; i < n; i++ {
				out[i*2] = floatToS16(buf[i][0])
				out[i*2+1] = floatToS16(buf[i][1])
			}
			if !cb(Chunk{Buf: out, Frames: n}) {
				return sink.Ok()
			}
		}
		if !ok {
			if err := d.raw.Err(); err != nil {
				return sink.Fail(model.CorruptedData, err)
			}
			return sink.Ok()
		}
	}
}

func floatToS16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func (d *FileDecoder) ClearCache() {
	if d.raw != nil {
		d.raw.Close()
		d.raw = nil
	}
	d.pipeline = nil
	d.fstream = nil
}

func (d *FileDecoder) SetVolume(v float64) {
	if d.fstream != nil {
		d.fstream.setVolume(v)
	}
}

func (d *FileDecoder) GetVolume() float64 {
	if d.fstream != nil {
		return d.fstream.getVolume()
	}
	return 1.0
}

func (d *FileDecoder) UpdateFilters(p model.Preset) {
	d.filters.Update(p)
}

// PositionSeconds reports how far into the stream d.raw currently is, used
// by the Player to publish CurrentInformation and to compute seek targets.
func (d *FileDecoder) PositionSeconds() float64 {
	if d.raw == nil {
		return 0
	}
	return d.format.SampleRate.D(d.raw.Position()).Seconds()
}

// DurationSeconds is Song.Duration for the currently open file.
func (d *FileDecoder) DurationSeconds() float64 {
	if d.raw == nil {
		return 0
	}
	return d.format.SampleRate.D(d.raw.Len()).Seconds()
}

// SeekTo repositions the underlying stream to the given second offset,
// clearing biquad state since stale filter history would otherwise click.
func (d *FileDecoder) SeekTo(seconds float64) error {
	if d.raw == nil {
		return fmt.Errorf("decoder: no stream open")
	}
	sample := time.Duration(seconds * float64(time.Second))
	n := d.format.SampleRate.N(sample)
	if n < 0 {
		n = 0
	}
	if n >= d.raw.Len() {
		n = d.raw.Len()
	}
	if err := d.raw.Seek(n); err != nil {
		return err
	}
	d.filters.apply(*d.filters.preset.Load())
	return nil
}
