package speech

import (
	"math"
	"testing"
)

func TestMovingAverageEdges(t *testing.T) {
	t.Parallel()

	got := movingAverage([]float64{0, 0, 5, 0, 0}, 3)
	want := []float64{0, 5.0 / 3, 5.0 / 3, 5.0 / 3, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("movingAverage = %v, want %v", got, want)
		}
	}

	edge := movingAverage([]float64{3, 1, 1, 1}, 3)
	if edge[0] != 2 {
		t.Fatalf("edge window should average the frames that exist, got %v", edge[0])
	}

	same := movingAverage([]float64{1, 2, 3}, 1)
	if same[1] != 2 {
		t.Fatalf("width 1 must leave values unchanged, got %v", same)
	}
}

func TestProfileLoudnessNormalises(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	sig := synthSine(2, 150, burst{0, 1})
	frames := Segment(sig, cfg.FrameSize, cfg.HopSize)
	env := ProfileLoudness(sig, frames, cfg.SmoothingWidth)

	if len(env.Normalized) != frames.Count {
		t.Fatalf("expected %d envelope frames, got %d", frames.Count, len(env.Normalized))
	}
	var max float64
	for _, v := range env.Normalized {
		if v < 0 || v > 1 {
			t.Fatalf("normalised value %v outside [0,1]", v)
		}
		max = math.Max(max, v)
	}
	if max != 1 {
		t.Fatalf("expected normalised peak of 1, got %v", max)
	}

	// a 0.5 amplitude sine has RMS 0.5/sqrt(2)
	if math.Abs(env.Peak-0.5/math.Sqrt2) > 0.01 {
		t.Fatalf("unexpected raw peak %v", env.Peak)
	}
	if avg := env.AverageVolume(); avg <= 0 || avg >= env.Peak {
		t.Fatalf("average volume %v should sit between 0 and the peak", avg)
	}
}

func TestProfileLoudnessSilence(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	sig := synthSine(1, 150)
	env := ProfileLoudness(sig, Segment(sig, cfg.FrameSize, cfg.HopSize), cfg.SmoothingWidth)
	if env.Peak != 0 || env.AverageVolume() != 0 {
		t.Fatalf("expected a zero envelope, got peak=%v avg=%v", env.Peak, env.AverageVolume())
	}
	for _, v := range env.Normalized {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("expected zeros, got %v", v)
		}
	}
}
