package speech

import (
	"fmt"
	"math"
)

// Config holds every tunable of the analysis pipeline. A Config is passed by
// value into NewAnalyzer, which validates it once and keeps its own copy.
type Config struct {
	// FrameSize is the analysis window length in samples.
	FrameSize int `json:"frameSize" yaml:"frame_size" mapstructure:"frame_size"`
	// HopSize is the distance between consecutive window starts in samples.
	HopSize int `json:"hopSize" yaml:"hop_size" mapstructure:"hop_size"`

	// PitchMinHz and PitchMaxHz bound the accepted fundamental frequency.
	PitchMinHz float64 `json:"pitchMinHz" yaml:"pitch_min_hz" mapstructure:"pitch_min_hz"`
	PitchMaxHz float64 `json:"pitchMaxHz" yaml:"pitch_max_hz" mapstructure:"pitch_max_hz"`
	// PitchConfidencePercentile is the percentile of per-frame peak
	// magnitudes a frame must reach to count as voiced.
	PitchConfidencePercentile float64 `json:"pitchConfidencePercentile" yaml:"pitch_confidence_percentile" mapstructure:"pitch_confidence_percentile"`

	// SmoothingWidth is the moving-average width of the loudness envelope in frames.
	SmoothingWidth int `json:"smoothingWidth" yaml:"smoothing_width" mapstructure:"smoothing_width"`
	// SilenceRatio scales the envelope maximum into the silence threshold.
	SilenceRatio float64 `json:"silenceRatio" yaml:"silence_ratio" mapstructure:"silence_ratio"`
	// MinPauseDuration is the shortest silent run, in seconds, reported as a pause.
	MinPauseDuration float64 `json:"minPauseDuration" yaml:"min_pause_duration" mapstructure:"min_pause_duration"`

	// OnsetSensitivity is the number of standard deviations above the mean
	// novelty an onset peak must reach.
	OnsetSensitivity float64 `json:"onsetSensitivity" yaml:"onset_sensitivity" mapstructure:"onset_sensitivity"`
	// OnsetMinGap is the shortest interval between two onsets in seconds.
	OnsetMinGap float64 `json:"onsetMinGap" yaml:"onset_min_gap" mapstructure:"onset_min_gap"`

	Criteria []Criterion `json:"criteria" yaml:"criteria" mapstructure:"criteria"`
	Bands    []Band      `json:"bands" yaml:"bands" mapstructure:"bands"`
}

// DefaultConfig returns the standard configuration for speech sampled at
// around 22 kHz.
func DefaultConfig() Config {
	return Config{
		FrameSize:                 2048,
		HopSize:                   512,
		PitchMinHz:                85,
		PitchMaxHz:                255,
		PitchConfidencePercentile: 75,
		SmoothingWidth:            5,
		SilenceRatio:              0.075,
		MinPauseDuration:          0.5,
		OnsetSensitivity:          1.0,
		OnsetMinGap:               0.1,
		Criteria:                  DefaultCriteria(),
		Bands:                     DefaultBands(),
	}
}

// Validate reports the first problem found, wrapped in ErrConfigurationInvalid.
func (c Config) Validate() error {
	if c.FrameSize < 2 {
		return fmt.Errorf("%w: frame_size must be at least 2, got %d", ErrConfigurationInvalid, c.FrameSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("%w: hop_size must be positive, got %d", ErrConfigurationInvalid, c.HopSize)
	}
	if !(c.PitchMinHz > 0) || !(c.PitchMinHz < c.PitchMaxHz) || math.IsInf(c.PitchMaxHz, 0) {
		return fmt.Errorf("%w: pitch band [%g, %g] must satisfy 0 < min < max", ErrConfigurationInvalid, c.PitchMinHz, c.PitchMaxHz)
	}
	if !(c.PitchConfidencePercentile > 0 && c.PitchConfidencePercentile <= 100) {
		return fmt.Errorf("%w: pitch_confidence_percentile must be in (0, 100], got %g", ErrConfigurationInvalid, c.PitchConfidencePercentile)
	}
	if c.SmoothingWidth < 1 {
		return fmt.Errorf("%w: smoothing_width must be at least 1, got %d", ErrConfigurationInvalid, c.SmoothingWidth)
	}
	if !(c.SilenceRatio > 0 && c.SilenceRatio < 1) {
		return fmt.Errorf("%w: silence_ratio must be in (0, 1), got %g", ErrConfigurationInvalid, c.SilenceRatio)
	}
	if !(c.MinPauseDuration >= 0) || math.IsInf(c.MinPauseDuration, 0) {
		return fmt.Errorf("%w: min_pause_duration must be a non-negative number, got %g", ErrConfigurationInvalid, c.MinPauseDuration)
	}
	if !(c.OnsetSensitivity >= 0) || math.IsInf(c.OnsetSensitivity, 0) {
		return fmt.Errorf("%w: onset_sensitivity must be a non-negative number, got %g", ErrConfigurationInvalid, c.OnsetSensitivity)
	}
	if !(c.OnsetMinGap >= 0) || math.IsInf(c.OnsetMinGap, 0) {
		return fmt.Errorf("%w: onset_min_gap must be a non-negative number, got %g", ErrConfigurationInvalid, c.OnsetMinGap)
	}
	if err := ValidateCriteria(c.Criteria); err != nil {
		return err
	}
	return ValidateBands(c.Bands)
}

func (c Config) clone() Config {
	out := c
	out.Criteria = append([]Criterion(nil), c.Criteria...)
	out.Bands = append([]Band(nil), c.Bands...)
	return out
}
