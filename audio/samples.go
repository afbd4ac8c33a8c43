package audio

import (
	"fmt"
	"os"

	"speech-coach/speech"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// sampleStreamer plays a mono sample slice on both channels.
type sampleStreamer struct {
	samples []float64
	pos     int
}

var _ beep.Streamer = (*sampleStreamer)(nil)

func (s *sampleStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy2(buf, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sampleStreamer) Err() error {
	return nil
}

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// Streamer exposes a signal as a beep.Streamer.
func Streamer(sig speech.Signal) beep.Streamer {
	return &sampleStreamer{samples: sig.Samples}
}

// WriteWAV encodes sig as 16-bit mono PCM at its own sample rate.
func WriteWAV(path string, sig speech.Signal) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sig.SampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(f, Streamer(sig), format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return f.Close()
}
