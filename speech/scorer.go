package speech

import (
	"fmt"
	"math"
)

// Criterion is one row of the scoring table. A metric scores Weight points
// at Ideal and loses them linearly until it is Span away from Ideal.
type Criterion struct {
	Metric Metric  `json:"metric" yaml:"metric" mapstructure:"metric"`
	Weight float64 `json:"weight" yaml:"weight" mapstructure:"weight"`
	Ideal  float64 `json:"ideal" yaml:"ideal" mapstructure:"ideal"`
	Span   float64 `json:"span" yaml:"span" mapstructure:"span"`
}

// CriterionScore is the sub-score one criterion produced. Value is nil when
// the metric was undefined for the signal.
type CriterionScore struct {
	Metric Metric   `json:"metric"`
	Value  *float64 `json:"value"`
	Weight float64  `json:"weight"`
	Score  float64  `json:"score"`
}

// ScoreBreakdown groups criterion scores under the five reporting headings.
// PauseScore sums the pause frequency and pause duration ratio criteria.
// Criteria on spectral metrics only count towards Total.
type ScoreBreakdown struct {
	PitchScore  float64          `json:"pitchScore"`
	VolumeScore float64          `json:"volumeScore"`
	RateScore   float64          `json:"rateScore"`
	PauseScore  float64          `json:"pauseScore"`
	RatioScore  float64          `json:"ratioScore"`
	Total       int              `json:"totalScore"`
	Criteria    []CriterionScore `json:"criteria"`
}

// DefaultCriteria returns the standard 100-point scoring table.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{Metric: MetricPitchVariation, Weight: 25, Ideal: 0.075, Span: 0.075},
		{Metric: MetricAverageVolume, Weight: 20, Ideal: 0.06, Span: 0.06},
		{Metric: MetricSpeakingRate, Weight: 20, Ideal: 3.25, Span: 3.25},
		{Metric: MetricPauseFrequency, Weight: 10, Ideal: 9, Span: 9},
		{Metric: MetricPauseDurationRatio, Weight: 10, Ideal: 0.2, Span: 0.2},
		{Metric: MetricSpeechRatio, Weight: 15, Ideal: 0.8, Span: 0.8},
	}
}

// ValidateCriteria checks that weights partition exactly 100 points.
func ValidateCriteria(criteria []Criterion) error {
	if len(criteria) == 0 {
		return fmt.Errorf("%w: no scoring criteria", ErrConfigurationInvalid)
	}

	seen := make(map[Metric]bool, len(criteria))
	var total float64
	for _, c := range criteria {
		if !scoringMetrics[c.Metric] {
			return fmt.Errorf("%w: unknown scoring metric %q", ErrConfigurationInvalid, c.Metric)
		}
		if seen[c.Metric] {
			return fmt.Errorf("%w: metric %q scored twice", ErrConfigurationInvalid, c.Metric)
		}
		seen[c.Metric] = true

		if c.Weight < 0 || math.IsNaN(c.Weight) {
			return fmt.Errorf("%w: weight for %q must not be negative", ErrConfigurationInvalid, c.Metric)
		}
		if !(c.Span > 0) || math.IsInf(c.Span, 0) {
			return fmt.Errorf("%w: span for %q must be positive", ErrConfigurationInvalid, c.Metric)
		}
		if math.IsNaN(c.Ideal) || math.IsInf(c.Ideal, 0) {
			return fmt.Errorf("%w: ideal for %q must be finite", ErrConfigurationInvalid, c.Metric)
		}
		total += c.Weight
	}

	if math.Abs(total-100) > 1e-9 {
		return fmt.Errorf("%w: criterion weights sum to %g, want 100", ErrConfigurationInvalid, total)
	}
	return nil
}

// ScoreMetrics applies the scoring table to m. An undefined metric scores 0.
func ScoreMetrics(m SpeechMetrics, criteria []Criterion) ScoreBreakdown {
	breakdown := ScoreBreakdown{Criteria: make([]CriterionScore, 0, len(criteria))}

	var sum float64
	for _, c := range criteria {
		cs := CriterionScore{Metric: c.Metric, Weight: c.Weight}
		if value, ok := m.Value(c.Metric); ok {
			v := value
			cs.Value = &v
			cs.Score = tentScore(value, c)
		}
		breakdown.Criteria = append(breakdown.Criteria, cs)
		sum += cs.Score

		switch c.Metric {
		case MetricPitchVariation:
			breakdown.PitchScore += cs.Score
		case MetricAverageVolume:
			breakdown.VolumeScore += cs.Score
		case MetricSpeakingRate:
			breakdown.RateScore += cs.Score
		case MetricPauseFrequency, MetricPauseDurationRatio:
			breakdown.PauseScore += cs.Score
		case MetricSpeechRatio:
			breakdown.RatioScore += cs.Score
		}
	}

	breakdown.Total = int(math.Round(sum))
	return breakdown
}

func tentScore(value float64, c Criterion) float64 {
	if math.IsNaN(value) {
		return 0
	}
	deviation := math.Min(math.Abs(value-c.Ideal)/c.Span, 1)
	return c.Weight * (1 - deviation)
}
