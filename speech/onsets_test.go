package speech

import (
	"math"
	"testing"
)

func TestSpectralFluxIgnoresDecay(t *testing.T) {
	t.Parallel()

	flux := spectralFlux([][]float64{
		{1, 1},
		{3, 1},
		{0, 0},
		{0, 2},
	})
	want := []float64{2, 2, 0, 2}
	for i := range want {
		if flux[i] != want[i] {
			t.Fatalf("spectralFlux = %v, want %v", flux, want)
		}
	}
}

func TestDetectOnsetsPicksSeparatedPeaks(t *testing.T) {
	t.Parallel()

	// frames alternate between silence and a burst every 10 frames
	rows := make([][]float64, 40)
	for i := range rows {
		level := 0.0
		if (i/10)%2 == 1 {
			level = 1
		}
		rows[i] = []float64{0, level, level}
	}
	spec := Spectrogram{Magnitudes: rows, BinHz: 10}
	frames := Frames{Size: 4, Hop: 1, Count: 40, Length: 40, SampleRate: 10}

	onsets := DetectOnsets(spec, frames, 1, 0.1)
	if onsets.Count() != 2 {
		t.Fatalf("expected two onsets, got %v", onsets.Times)
	}
	if onsets.Times[0] != 1 || onsets.Times[1] != 3 {
		t.Fatalf("expected onsets at 1s and 3s, got %v", onsets.Times)
	}

	sparse := DetectOnsets(spec, frames, 1, 2.5)
	if sparse.Count() != 1 {
		t.Fatalf("min gap should drop the second onset, got %v", sparse.Times)
	}
}

func TestDetectOnsetsSilence(t *testing.T) {
	t.Parallel()

	rows := make([][]float64, 20)
	for i := range rows {
		rows[i] = make([]float64, 8)
	}
	onsets := DetectOnsets(Spectrogram{Magnitudes: rows, BinHz: 1}, Frames{Hop: 1, Count: 20, SampleRate: 1}, 1, 0)
	if onsets.Count() != 0 {
		t.Fatalf("expected no onsets in silence, got %v", onsets.Times)
	}
}

func TestDetectOnsetsTimesIncrease(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	sig := synthSine(4, 150, burst{0.2, 0.6}, burst{1.2, 1.5}, burst{2.0, 2.4}, burst{3.1, 3.5})
	frames, spec := spectrogramOf(sig, cfg)

	onsets := DetectOnsets(spec, frames, cfg.OnsetSensitivity, cfg.OnsetMinGap)
	if onsets.Count() == 0 {
		t.Fatalf("expected onsets for four bursts")
	}
	for i := 1; i < len(onsets.Times); i++ {
		if !(onsets.Times[i] > onsets.Times[i-1]) {
			t.Fatalf("onset times not strictly increasing: %v", onsets.Times)
		}
		if onsets.Times[i]-onsets.Times[i-1] < cfg.OnsetMinGap-1e-12 {
			t.Fatalf("onsets closer than the minimum gap: %v", onsets.Times)
		}
	}
	if math.IsNaN(onsets.Threshold) {
		t.Fatalf("threshold must be defined")
	}
}
