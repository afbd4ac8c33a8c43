package speech

import (
	"math"

	"github.com/montanaflynn/stats"
)

// OnsetSet lists detected onset times in strictly increasing order together
// with the novelty curve they were picked from.
type OnsetSet struct {
	Times     []float64
	Novelty   []float64
	Threshold float64
}

func (o OnsetSet) Count() int {
	return len(o.Times)
}

// DetectOnsets picks peaks of the spectral flux novelty curve. A frame is an
// onset when its novelty is a local maximum above mean + sensitivity*std and
// at least minGap seconds have passed since the previous onset.
func DetectOnsets(spec Spectrogram, frames Frames, sensitivity, minGap float64) OnsetSet {
	novelty := spectralFlux(spec.Magnitudes)
	if len(novelty) == 0 {
		return OnsetSet{}
	}

	mean, _ := stats.Mean(novelty)
	std, _ := stats.StandardDeviationPopulation(novelty)
	threshold := mean + sensitivity*std

	var times []float64
	last := math.Inf(-1)
	for t, v := range novelty {
		if v <= 0 || v <= threshold {
			continue
		}
		if t > 0 && v < novelty[t-1] {
			continue
		}
		if t+1 < len(novelty) && v <= novelty[t+1] {
			continue
		}
		at := frames.Time(t)
		if at-last < minGap {
			continue
		}
		times = append(times, at)
		last = at
	}

	return OnsetSet{Times: times, Novelty: novelty, Threshold: threshold}
}

// spectralFlux sums the positive magnitude change of every bin between
// consecutive frames. The frame before the first one is taken as silence.
func spectralFlux(magnitudes [][]float64) []float64 {
	flux := make([]float64, len(magnitudes))
	var prev []float64
	for t, row := range magnitudes {
		var sum float64
		for k, m := range row {
			var before float64
			if prev != nil {
				before = prev[k]
			}
			if d := m - before; d > 0 {
				sum += d
			}
		}
		flux[t] = sum
		prev = row
	}
	return flux
}
