package audio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speech-coach/models"
	"speech-coach/speech"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toneSignal(t *testing.T, rate, n int, freq float64) speech.Signal {
	t.Helper()

	tone, err := generators.SineTone(beep.SampleRate(rate), freq)
	require.NoError(t, err)

	samples, err := Collect(beep.Take(n, tone))
	require.NoError(t, err)
	require.Len(t, samples, n)

	for i := range samples {
		samples[i] *= 0.5
	}

	sig, err := speech.NewSignal(samples, rate)
	require.NoError(t, err)
	return sig
}

func TestCollectConcatenatesToneAndSilence(t *testing.T) {
	t.Parallel()

	rate := beep.SampleRate(DefaultSampleRate)
	tone, err := generators.SineTone(rate, 150)
	require.NoError(t, err)

	toneLen := rate.N(200 * time.Millisecond)
	silenceLen := rate.N(100 * time.Millisecond)

	samples, err := Collect(beep.Seq(beep.Take(toneLen, tone), generators.Silence(silenceLen)))
	require.NoError(t, err)
	require.Len(t, samples, toneLen+silenceLen)

	peak := 0.0
	for _, v := range samples[:toneLen] {
		peak = math.Max(peak, math.Abs(v))
	}
	assert.Greater(t, peak, 0.9)

	for i, v := range samples[toneLen:] {
		if v != 0 {
			t.Fatalf("sample %d after the tone = %v, want 0", toneLen+i, v)
		}
	}
}

func TestWriteWAVThenLoad(t *testing.T) {
	t.Parallel()

	sig := toneSignal(t, DefaultSampleRate, DefaultSampleRate/2, 150)
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, WriteWAV(path, sig))

	loaded, err := Load(context.Background(), path, DefaultSampleRate)
	require.NoError(t, err)
	require.Equal(t, DefaultSampleRate, loaded.SampleRate)
	require.Len(t, loaded.Samples, len(sig.Samples))

	for i := range sig.Samples {
		if math.Abs(sig.Samples[i]-loaded.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, loaded.Samples[i], sig.Samples[i])
		}
	}
}

func TestLoadResamplesToTargetRate(t *testing.T) {
	t.Parallel()

	sig := toneSignal(t, 44100, 44100, 150)
	path := filepath.Join(t.TempDir(), "tone44k.wav")
	require.NoError(t, WriteWAV(path, sig))

	loaded, err := Load(context.Background(), path, DefaultSampleRate)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, loaded.SampleRate)
	assert.InDelta(t, DefaultSampleRate, len(loaded.Samples), 16)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := Load(context.Background(), path, DefaultSampleRate)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFromRecordDataRawPCMDownmixes(t *testing.T) {
	t.Parallel()

	// 100 stereo frames: left at half scale, right silent
	raw := make([]byte, 100*4)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint16(raw[i*4:], uint16(16384))
		binary.LittleEndian.PutUint16(raw[i*4+2:], 0)
	}

	rec := models.RecordData{
		Audio:      base64.StdEncoding.EncodeToString(raw),
		Channels:   2,
		SampleRate: 16000,
		SampleSize: 16,
	}

	sig, err := FromRecordData(rec, 16000)
	require.NoError(t, err)
	require.Len(t, sig.Samples, 100)
	for i, v := range sig.Samples {
		if math.Abs(v-0.25) > 1e-9 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestFromRecordDataWAVPayload(t *testing.T) {
	t.Parallel()

	sig := toneSignal(t, DefaultSampleRate, 4096, 220)
	path := filepath.Join(t.TempDir(), "payload.wav")
	require.NoError(t, WriteWAV(path, sig))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := FromRecordData(models.RecordData{Audio: base64.StdEncoding.EncodeToString(data)}, DefaultSampleRate)
	require.NoError(t, err)
	assert.Len(t, got.Samples, 4096)
}

func TestFromRecordDataRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	_, err := FromRecordData(models.RecordData{Audio: "%%%"}, DefaultSampleRate)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = FromRecordData(models.RecordData{Audio: base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})}, DefaultSampleRate)
	assert.ErrorIs(t, err, speech.ErrInvalidInput)

	_, err = FromRecordData(models.RecordData{
		Audio:      base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4}),
		SampleRate: 16000,
		SampleSize: 24,
	}, DefaultSampleRate)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestWAVAndPCMPayloadsAgree(t *testing.T) {
	t.Parallel()

	const n = 4096
	raw := make([]byte, 2*n)
	pcm := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(0.6 * 32767 * math.Sin(2*math.Pi*180*float64(i)/DefaultSampleRate))
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(v))
		pcm[i] = float64(v) / 32767
	}

	fromPCM, err := FromRecordData(models.RecordData{
		Audio:      base64.StdEncoding.EncodeToString(raw),
		Channels:   1,
		SampleRate: DefaultSampleRate,
		SampleSize: 16,
	}, DefaultSampleRate)
	require.NoError(t, err)

	sig, err := speech.NewSignal(pcm, DefaultSampleRate)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "same.wav")
	require.NoError(t, WriteWAV(path, sig))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	fromWAV, err := FromRecordData(models.RecordData{Audio: base64.StdEncoding.EncodeToString(data)}, DefaultSampleRate)
	require.NoError(t, err)

	require.Len(t, fromWAV.Samples, n)
	require.Len(t, fromPCM.Samples, n)
	peak := 0.0
	for i := range fromPCM.Samples {
		if math.Abs(fromWAV.Samples[i]-fromPCM.Samples[i]) > 1e-4 {
			t.Fatalf("sample %d: wav %v, pcm %v", i, fromWAV.Samples[i], fromPCM.Samples[i])
		}
		peak = math.Max(peak, math.Abs(fromWAV.Samples[i]))
	}
	assert.InDelta(t, 0.6, peak, 1e-3)
}

func TestFromRecordDataRejectsOutOfRangeRates(t *testing.T) {
	t.Parallel()

	raw := base64.StdEncoding.EncodeToString(make([]byte, 2048))
	for _, rate := range []int{1, MinSampleRate - 1, MaxSampleRate + 1} {
		_, err := FromRecordData(models.RecordData{Audio: raw, SampleRate: rate, SampleSize: 16}, DefaultSampleRate)
		assert.ErrorIs(t, err, speech.ErrInvalidInput, "rate %d", rate)
	}

	// the rate in a WAV header is checked the same way
	sig := toneSignal(t, 4000, 4000, 150)
	path := filepath.Join(t.TempDir(), "slow.wav")
	require.NoError(t, WriteWAV(path, sig))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = FromRecordData(models.RecordData{Audio: base64.StdEncoding.EncodeToString(data)}, DefaultSampleRate)
	assert.ErrorIs(t, err, speech.ErrInvalidInput)
}

func TestLoadDecodesCompressedAudioInProcess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, ext := range []string{".mp3", ".flac", ".ogg"} {
		path := filepath.Join(dir, "broken"+ext)
		require.NoError(t, os.WriteFile(path, []byte("not audio at all"), 0o644))

		_, err := Load(context.Background(), path, DefaultSampleRate)
		assert.ErrorIs(t, err, ErrDecode, ext)
		assert.NotErrorIs(t, err, ErrFFmpegMissing, ext)
	}
}
