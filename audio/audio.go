package audio

// Waveform Source
//
// This package turns recordings into the mono speech.Signal the analyzer
// expects:
//
// 1. Container dispatch: video containers and m4a are converted to WAV with ffmpeg
// 2. Decoding: WAV, MP3, FLAC and Ogg Vorbis are decoded with beep
// 3. Downmix: stereo frames are averaged into one channel
// 4. Resampling: audio is resampled to DefaultSampleRate unless told otherwise
//
// Client payloads (models.RecordData) carry base64 WAV or raw little-endian
// PCM and go through the same decode path.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"speech-coach/speech"
	"speech-coach/utils"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// DefaultSampleRate is the rate every recording is analysed at.
const DefaultSampleRate = 22050

const resampleQuality = 4

// Source sample rates outside this range are rejected before resampling.
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrDecode wraps every failure to interpret audio bytes.
	ErrDecode = errors.New("unable to decode audio")
)

var containerExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".m4a":  true,
}

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".mp3":  mp3.Decode,
	".flac": decodeFLAC,
	".ogg":  vorbis.Decode,
}

func decodeWAV(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	return wav.Decode(rc)
}

func decodeFLAC(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	return flac.Decode(rc)
}

// Load reads the recording at path into a mono signal at targetRate. Audio
// files are decoded directly; video containers go through ffmpeg first.
func Load(ctx context.Context, path string, targetRate int) (speech.Signal, error) {
	ext := strings.ToLower(filepath.Ext(path))

	source := path
	if containerExtensions[ext] {
		converted, err := ConvertToWAV(ctx, path)
		if err != nil {
			return speech.Signal{}, err
		}
		defer utils.DeleteFile(converted)
		source = converted
		ext = ".wav"
	}

	if _, ok := decoders[ext]; !ok {
		return speech.Signal{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(source)
	if err != nil {
		return speech.Signal{}, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	return decode(ext, f, targetRate)
}

// Decode reads WAV data from r into a mono signal at targetRate.
func Decode(r io.Reader, targetRate int) (speech.Signal, error) {
	return decode(".wav", io.NopCloser(r), targetRate)
}

func decode(ext string, rc io.ReadCloser, targetRate int) (speech.Signal, error) {
	streamer, format, err := decoders[ext](rc)
	if err != nil {
		return speech.Signal{}, fmt.Errorf("%w: %s: %v", ErrDecode, strings.TrimPrefix(ext, "."), err)
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if ext == ".wav" {
		source = fullScale(streamer, format.Precision)
	}
	return fromStreamer(source, format.SampleRate, targetRate)
}

// fullScale corrects beep's WAV decoder, which divides 16 and 24-bit samples
// by 2^n-1 instead of 2^(n-1) and so yields half-scale audio. Corrected WAV
// samples match the raw PCM path in record.go.
func fullScale(streamer beep.Streamer, precision int) beep.Streamer {
	var scale float64
	switch precision {
	case 2:
		scale = float64(1<<16-1) / (1 << 15)
	case 3:
		scale = float64(1<<24-1) / (1 << 23)
	default:
		return streamer
	}
	return &effects.Gain{Streamer: streamer, Gain: scale - 1}
}

func fromStreamer(streamer beep.Streamer, rate beep.SampleRate, targetRate int) (speech.Signal, error) {
	if rate < MinSampleRate || rate > MaxSampleRate {
		return speech.Signal{}, fmt.Errorf("%w: sample rate %d Hz outside [%d, %d]",
			speech.ErrInvalidInput, int(rate), MinSampleRate, MaxSampleRate)
	}
	if targetRate <= 0 {
		targetRate = int(rate)
	}

	var source beep.Streamer = streamer
	if int(rate) != targetRate {
		source = beep.Resample(resampleQuality, rate, beep.SampleRate(targetRate), streamer)
	}

	samples, err := Collect(source)
	if err != nil {
		return speech.Signal{}, err
	}

	return speech.NewSignal(samples, targetRate)
}

// Collect drains streamer into mono samples, averaging the two channels.
func Collect(streamer beep.Streamer) ([]float64, error) {
	var samples []float64
	buffer := make([][2]float64, 1024)

	for {
		n, ok := streamer.Stream(buffer)
		for i := 0; i < n; i++ {
			samples = append(samples, (buffer[i][0]+buffer[i][1])/2)
		}
		if !ok {
			if err := streamer.Err(); err != nil {
				return nil, fmt.Errorf("failed to read audio stream: %w", err)
			}
			break
		}
	}

	return samples, nil
}
