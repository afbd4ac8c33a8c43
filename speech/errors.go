package speech

import "errors"

var (
	// ErrEmptySignal is returned for a waveform with no samples.
	ErrEmptySignal = errors.New("empty signal")
	// ErrInvalidInput covers a non-positive sample rate, non-finite samples
	// and signals too short to yield a single hop of analysis.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfigurationInvalid is returned by Config.Validate and NewAnalyzer.
	ErrConfigurationInvalid = errors.New("invalid configuration")
)
