package speech

// SpectralSummary holds the frame means of the tonal descriptors.
type SpectralSummary struct {
	MeanCentroid         float64 `json:"meanCentroid"`
	MeanZeroCrossingRate float64 `json:"meanZeroCrossingRate"`
}

// ExtractSpectral averages the spectral centroid (Hz) and zero-crossing rate
// over all frames. Silent frames contribute a centroid of 0.
func ExtractSpectral(sig Signal, frames Frames, spec Spectrogram) SpectralSummary {
	centroids := make([]float64, len(spec.Magnitudes))
	for t, row := range spec.Magnitudes {
		centroids[t] = spectralCentroid(row, spec.BinHz)
	}

	zcr := make([]float64, frames.Count)
	for t := range zcr {
		start, end := frames.Bounds(t)
		zcr[t] = zeroCrossingRate(sig.Samples[start:end])
	}

	return SpectralSummary{
		MeanCentroid:         meanOrZero(centroids),
		MeanZeroCrossingRate: meanOrZero(zcr),
	}
}

func spectralCentroid(magnitudes []float64, binHz float64) float64 {
	var weighted, total float64
	for k, m := range magnitudes {
		weighted += float64(k) * binHz * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// zeroCrossingRate counts sign changes between consecutive non-zero samples.
func zeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	prev := 0.0
	for _, v := range samples {
		if v == 0 {
			continue
		}
		if prev != 0 && (v > 0) != (prev > 0) {
			crossings++
		}
		prev = v
	}
	return float64(crossings) / float64(len(samples)-1)
}
