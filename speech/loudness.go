package speech

import "math"

// LoudnessEnvelope is the per-frame energy profile of a signal.
type LoudnessEnvelope struct {
	RMS        []float64
	Smoothed   []float64
	Normalized []float64
	Peak       float64
}

// ProfileLoudness computes frame RMS over the zero-padded window, smooths it
// with a centred moving average of width frames and scales the result by its
// own maximum. A silent signal yields an all-zero envelope.
func ProfileLoudness(sig Signal, frames Frames, width int) LoudnessEnvelope {
	rms := make([]float64, frames.Count)
	for t := range rms {
		start, end := frames.Bounds(t)
		var sum float64
		for _, v := range sig.Samples[start:end] {
			sum += v * v
		}
		rms[t] = math.Sqrt(sum / float64(frames.Size))
	}

	smoothed := movingAverage(rms, width)

	var peak float64
	for _, v := range smoothed {
		if v > peak {
			peak = v
		}
	}

	normalized := make([]float64, len(smoothed))
	if peak > 0 {
		for i, v := range smoothed {
			normalized[i] = v / peak
		}
	}

	return LoudnessEnvelope{
		RMS:        rms,
		Smoothed:   smoothed,
		Normalized: normalized,
		Peak:       peak,
	}
}

// AverageVolume is the mean smoothed RMS in signal amplitude units, not of
// the normalized envelope. The default volume criterion and bands assume a
// full-scale [-1, 1] signal.
func (e LoudnessEnvelope) AverageVolume() float64 {
	return meanOrZero(e.Smoothed)
}

// movingAverage averages each value with its neighbours in a window of the
// given width centred on it. Windows are cut at the edges.
func movingAverage(values []float64, width int) []float64 {
	out := make([]float64, len(values))
	if width <= 1 {
		copy(out, values)
		return out
	}

	half := width / 2
	for i := range values {
		lo := i - half
		hi := lo + width
		if lo < 0 {
			lo = 0
		}
		if hi > len(values) {
			hi = len(values)
		}
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
