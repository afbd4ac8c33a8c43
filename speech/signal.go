package speech

import (
	"fmt"
	"math"
)

// Signal is a decoded mono waveform normalised to [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// NewSignal validates and copies samples into a Signal.
func NewSignal(samples []float64, sampleRate int) (Signal, error) {
	sig := Signal{Samples: samples, SampleRate: sampleRate}
	if err := sig.Validate(); err != nil {
		return Signal{}, err
	}

	owned := make([]float64, len(samples))
	copy(owned, samples)
	sig.Samples = owned
	return sig, nil
}

func (s Signal) Validate() error {
	if len(s.Samples) == 0 {
		return ErrEmptySignal
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, s.SampleRate)
	}
	for i, v := range s.Samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

// Duration is the signal length in seconds. Every rate and ratio in
// SpeechMetrics divides by this one value.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}
