package speech

import (
	"math"

	"github.com/montanaflynn/stats"
)

// PitchContour is the per-frame fundamental frequency estimate. Hz[t] is 0
// for frames without a reliable estimate: silence, a dominant peak outside
// the voice band, or a peak weaker than the confidence threshold.
type PitchContour struct {
	Hz        []float64
	Magnitude []float64
	Threshold float64
}

// peakFloor is the fraction of a frame's strongest bin an in-band peak must
// reach to count as a pitch candidate.
const peakFloor = 0.1

// TrackPitch picks the strongest spectral peak inside [minHz, maxHz] of every
// frame as its pitch candidate, so a fundamental survives harmonics that are
// louder than it. A band-edge bin on the slope of a peak outside the band is
// not a candidate. A candidate is kept when it reaches peakFloor of the
// frame's overall maximum and the given percentile of all frames' in-band
// peaks.
func TrackPitch(spec Spectrogram, minHz, maxHz, percentile float64) PitchContour {
	count := len(spec.Magnitudes)
	candidates := make([]float64, count)
	magnitudes := make([]float64, count)

	for t, row := range spec.Magnitudes {
		lo, hi := spec.bandBins(minHz, maxHz, len(row))
		if lo > hi {
			continue
		}

		best := -1
		for k := lo; k <= hi; k++ {
			if isPeak(row, k) && (best < 0 || row[k] > row[best]) {
				best = k
			}
		}
		if best < 0 || row[best] < peakFloor*rowMax(row) {
			continue
		}
		candidates[t] = spec.Frequency(best)
		magnitudes[t] = row[best]
	}

	threshold, err := stats.Percentile(magnitudes, percentile)
	if err != nil {
		threshold = 0
	}

	hz := make([]float64, count)
	for t := range hz {
		if mag := magnitudes[t]; mag > 0 && mag >= threshold {
			hz[t] = candidates[t]
		}
	}

	return PitchContour{Hz: hz, Magnitude: magnitudes, Threshold: threshold}
}

// bandBins returns the inclusive bin range whose centre frequencies lie in
// [minHz, maxHz]. Bin 0 is DC and never included.
func (s Spectrogram) bandBins(minHz, maxHz float64, bins int) (int, int) {
	if s.BinHz <= 0 {
		return 1, 0
	}
	lo := int(math.Ceil(minHz / s.BinHz))
	hi := int(math.Floor(maxHz / s.BinHz))
	if lo < 1 {
		lo = 1
	}
	if hi > bins-1 {
		hi = bins - 1
	}
	return lo, hi
}

// isPeak reports whether bin k is a local maximum. Bins past the end of the
// row count as zero.
func isPeak(row []float64, k int) bool {
	next := 0.0
	if k+1 < len(row) {
		next = row[k+1]
	}
	return row[k] > row[k-1] && row[k] >= next
}

func rowMax(row []float64) float64 {
	var peak float64
	for _, v := range row {
		peak = math.Max(peak, v)
	}
	return peak
}

// Voiced returns the frames' pitch values that passed the gate, in frame order.
func (p PitchContour) Voiced() []float64 {
	var voiced []float64
	for _, f := range p.Hz {
		if f > 0 {
			voiced = append(voiced, f)
		}
	}
	return voiced
}

// PitchVariation is the population variance of the voiced pitch values after
// min-max scaling to [0, 1]. ok is false when no frame is voiced; identical
// values give 0.
func PitchVariation(voiced []float64) (variation float64, ok bool) {
	if len(voiced) == 0 {
		return 0, false
	}

	lo, _ := stats.Min(voiced)
	hi, _ := stats.Max(voiced)
	span := hi - lo
	if span <= 1e-12*hi {
		return 0, true
	}

	scaled := make([]float64, len(voiced))
	for i, f := range voiced {
		scaled[i] = (f - lo) / span
	}

	variance, err := stats.PopulationVariance(scaled)
	if err != nil {
		return 0, true
	}
	return variance, true
}
