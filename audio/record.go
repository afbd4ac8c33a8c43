package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"speech-coach/models"
	"speech-coach/speech"

	"github.com/gopxl/beep"
)

// FromRecordData decodes a client payload. Audio holding a RIFF header is
// decoded as WAV; anything else is read as interleaved little-endian PCM
// described by Channels, SampleRate and SampleSize (bits). Both paths map
// full-scale PCM onto [-1, 1] and reject rates outside
// [MinSampleRate, MaxSampleRate].
func FromRecordData(rec models.RecordData, targetRate int) (speech.Signal, error) {
	raw, err := base64.StdEncoding.DecodeString(rec.Audio)
	if err != nil {
		return speech.Signal{}, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}

	if bytes.HasPrefix(raw, []byte("RIFF")) {
		return Decode(bytes.NewReader(raw), targetRate)
	}

	if rec.SampleRate < MinSampleRate || rec.SampleRate > MaxSampleRate {
		return speech.Signal{}, fmt.Errorf("%w: sample rate %d Hz outside [%d, %d]",
			speech.ErrInvalidInput, rec.SampleRate, MinSampleRate, MaxSampleRate)
	}

	samples, err := decodePCM(raw, rec.Channels, rec.SampleSize)
	if err != nil {
		return speech.Signal{}, err
	}

	return fromStreamer(&sampleStreamer{samples: samples}, beep.SampleRate(rec.SampleRate), targetRate)
}

// decodePCM downmixes interleaved PCM frames to mono in [-1, 1].
func decodePCM(raw []byte, channels, bits int) ([]float64, error) {
	if channels <= 0 {
		channels = 1
	}
	if bits == 0 {
		bits = 16
	}

	width := bits / 8
	switch bits {
	case 8, 16, 32:
	default:
		return nil, fmt.Errorf("%w: unsupported sample size of %d bits", ErrDecode, bits)
	}

	frameBytes := width * channels
	frames := len(raw) / frameBytes
	samples := make([]float64, frames)

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			off := i*frameBytes + c*width
			switch bits {
			case 8:
				sum += (float64(raw[off]) - 128) / 128
			case 16:
				sum += float64(int16(binary.LittleEndian.Uint16(raw[off:]))) / 32768
			case 32:
				sum += float64(int32(binary.LittleEndian.Uint32(raw[off:]))) / 2147483648
			}
		}
		samples[i] = sum / float64(channels)
	}

	return samples, nil
}
