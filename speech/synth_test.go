package speech

import "math"

const testSampleRate = 22050

type burst struct {
	from, to float64
}

// synthSine renders a 0.5-amplitude sine at freq during each burst and
// silence elsewhere.
func synthSine(total, freq float64, bursts ...burst) Signal {
	n := int(total * testSampleRate)
	samples := make([]float64, n)
	for _, b := range bursts {
		start := int(b.from * testSampleRate)
		end := int(b.to * testSampleRate)
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
		}
	}
	return Signal{Samples: samples, SampleRate: testSampleRate}
}

func spectrogramOf(sig Signal, cfg Config) (Frames, Spectrogram) {
	frames := Segment(sig, cfg.FrameSize, cfg.HopSize)
	return frames, ComputeSpectrogram(sig, frames)
}
