package decoder

import (
	"errors"
	"io"

	"github.com/llehouerou/go-aac"
)

// aacStreamer adapts github.com/llehouerou/go-aac's raw ADTS frame decoder
// to beep's StreamSeekCloser, so it can sit in the same resample/volume/
// filter pipeline as the container-native beep decoders. Seeking is
// implemented by re-reading from the start and discarding frames, since
// ADTS carries no byte-accurate seek table; the Player re-opens at a
// second-granular target anyway, so precision loss here is bounded by one
// frame (1024 samples).
type aacStreamer struct {
	r          io.ReadSeeker
	dec        *aac.Decoder
	pcm        []int16 // pending decoded samples not yet consumed, interleaved
	pos        int     // frames delivered so far
	total      int     // best-effort total frame count, 0 if unknown
	channels   int
	sampleRate int
	err        error
}

// aacFrameSamples is the per-channel sample count of one AAC ADTS frame.
const aacFrameSamples = 1024

var errNoMoreADTSFrames = errors.New("aac: no more ADTS frames")

func newAACStreamer(r io.ReadSeeker) (*aacStreamer, error) {
	d := aac.NewDecoder()
	d.SetConfiguration(aac.Config{
		DefSampleRate: 44100,
		OutputFormat:  aac.OutputFormat16Bit,
	})
	s := &aacStreamer{r: r, dec: d}
	// Prime the decoder with the first frame to learn channels/sample rate.
	if err := s.fillOneFrame(); err != nil && err != errNoMoreADTSFrames {
		return nil, err
	}
	s.channels = int(s.dec.Channels())
	if s.channels == 0 {
		s.channels = 2
	}
	s.sampleRate = int(s.dec.SampleRate())
	if s.sampleRate == 0 {
		s.sampleRate = 44100
	}
	return s, nil
}

// nextADTSFrame reads one ADTS framed AAC packet from r.
func nextADTSFrame(r io.Reader) ([]byte, error) {
	var hdr [7]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errNoMoreADTSFrames
	}
	if hdr[0] != 0xFF || hdr[1]&0xF0 != 0xF0 {
		return nil, errNoMoreADTSFrames
	}
	frameLen := (int(hdr[3]&0x03) << 11) | (int(hdr[4]) << 3) | (int(hdr[5]) >> 5)
	if frameLen < 7 {
		return nil, errNoMoreADTSFrames
	}
	payload := make([]byte, frameLen-7)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errNoMoreADTSFrames
	}
	full := make([]byte, 7+len(payload))
	copy(full, hdr[:])
	copy(full[7:], payload)
	return full, nil
}

// fillOneFrame decodes the next ADTS frame into s.pcm, appending.
func (s *aacStreamer) fillOneFrame() error {
	frame, err := nextADTSFrame(s.r)
	if err != nil {
		return err
	}
	pcm, err := s.dec.Decode(frame)
	if err != nil {
		return err
	}
	s.pcm = append(s.pcm, pcm...)
	return nil
}

func (s *aacStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		needed := s.channels
		if len(s.pcm) < needed {
			if err := s.fillOneFrame(); err != nil {
				if n > 0 {
					return n, true
				}
				return 0, false
			}
			continue
		}
		var l, r int16
		if s.channels == 1 {
			l = s.pcm[0]
			r = l
			s.pcm = s.pcm[1:]
		} else {
			l, r = s.pcm[0], s.pcm[1]
			s.pcm = s.pcm[2:]
		}
		samples[n][0] = float64(l) / 32768.0
		samples[n][1] = float64(r) / 32768.0
		n++
		s.pos++
	}
	return n, true
}

func (s *aacStreamer) Err() error { return s.err }

func (s *aacStreamer) Len() int {
	if s.total > 0 {
		return s.total
	}
	return s.pos + len(s.pcm)/s.channels
}

func (s *aacStreamer) Position() int { return s.pos }

// Seek re-opens the stream from the start and discards frames until it
// reaches the target position; see the type doc for why.
func (s *aacStreamer) Seek(p int) error {
	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.pcm = nil
	s.pos = 0
	for s.pos < p {
		if err := s.fillOneFrame(); err != nil {
			break
		}
		avail := len(s.pcm) / s.channels
		skip := p - s.pos
		if skip > avail {
			skip = avail
		}
		s.pcm = s.pcm[skip*s.channels:]
		s.pos += skip
	}
	return nil
}

func (s *aacStreamer) Close() error {
	s.dec.Close()
	if rc, ok := s.r.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

// adtsFrameCount is a best-effort, cheap way to estimate total frames by
// scanning sync words without fully decoding; used only to populate
// Song.Duration before the whole file has been decoded.
func adtsFrameCount(r io.ReadSeeker) int {
	cur, _ := r.Seek(0, io.SeekCurrent)
	defer r.Seek(cur, io.SeekStart)
	r.Seek(0, io.SeekStart)
	count := 0
	var hdr [7]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			break
		}
		if hdr[0] != 0xFF || hdr[1]&0xF0 != 0xF0 {
			break
		}
		frameLen := (int(hdr[3]&0x03) << 11) | (int(hdr[4]) << 3) | (int(hdr[5]) >> 5)
		if frameLen < 7 {
			break
		}
		if _, err := r.Seek(int64(frameLen-7), io.SeekCurrent); err != nil {
			break
		}
		count++
	}
	return count
}
