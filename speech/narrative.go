package speech

import (
	"fmt"
	"math"
)

// Kind tags a narrative statement for the summary lists.
type Kind string

const (
	KindStrength    Kind = "strength"
	KindImprovement Kind = "improvement"
	KindNeutral     Kind = "neutral"
)

// Unbounded is the open upper edge of the last band of a metric.
const Unbounded = math.MaxFloat64

// Band is one row of a narrative table. A defined value v matches when
// Lower <= v < Upper. Rows with Undefined set match only a metric that has
// no value, which is how a missing pitch gets its own sentence.
type Band struct {
	Metric    Metric  `json:"metric" yaml:"metric" mapstructure:"metric"`
	Lower     float64 `json:"lower" yaml:"lower" mapstructure:"lower"`
	Upper     float64 `json:"upper" yaml:"upper" mapstructure:"upper"`
	Undefined bool    `json:"undefined,omitempty" yaml:"undefined,omitempty" mapstructure:"undefined"`
	Label     string  `json:"label" yaml:"label" mapstructure:"label"`
	Kind      Kind    `json:"kind" yaml:"kind" mapstructure:"kind"`
	Message   string  `json:"message" yaml:"message" mapstructure:"message"`
}

func (b Band) matches(value float64, defined bool) bool {
	if b.Undefined {
		return !defined
	}
	return defined && value >= b.Lower && value < b.Upper
}

// Statement is the feedback selected for one metric.
type Statement struct {
	Metric  Metric   `json:"metric"`
	Value   *float64 `json:"value"`
	Band    string   `json:"band"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
}

// NarrativeReport is the structured feedback for one analysis. Strengths and
// Improvements hold the band labels of the matching statements.
type NarrativeReport struct {
	Statements   []Statement `json:"statements"`
	Strengths    []string    `json:"strengths"`
	Improvements []string    `json:"improvements"`
}

// Narrate selects one band per metric of the table, in the order metrics
// first appear in it. Metrics with no matching row are skipped.
func Narrate(m SpeechMetrics, scores ScoreBreakdown, bands []Band) NarrativeReport {
	report := NarrativeReport{
		Statements:   []Statement{},
		Strengths:    []string{},
		Improvements: []string{},
	}

	for _, metric := range bandMetrics(bands) {
		value, defined := narrativeValue(metric, m, scores)

		for _, b := range bands {
			if b.Metric != metric || !b.matches(value, defined) {
				continue
			}

			st := Statement{Metric: metric, Band: b.Label, Kind: b.Kind, Message: b.Message}
			if defined {
				v := value
				st.Value = &v
			}
			report.Statements = append(report.Statements, st)

			switch b.Kind {
			case KindStrength:
				report.Strengths = append(report.Strengths, b.Label)
			case KindImprovement:
				report.Improvements = append(report.Improvements, b.Label)
			}
			break
		}
	}

	return report
}

func narrativeValue(metric Metric, m SpeechMetrics, scores ScoreBreakdown) (float64, bool) {
	if metric == MetricTotalScore {
		return float64(scores.Total), true
	}
	return m.Value(metric)
}

func bandMetrics(bands []Band) []Metric {
	var order []Metric
	seen := make(map[Metric]bool)
	for _, b := range bands {
		if !seen[b.Metric] {
			seen[b.Metric] = true
			order = append(order, b.Metric)
		}
	}
	return order
}

// ValidateBands rejects unknown metrics, empty or inverted intervals,
// overlapping rows within a metric and duplicate undefined rows.
func ValidateBands(bands []Band) error {
	byMetric := make(map[Metric][]Band)
	for _, b := range bands {
		if !scoringMetrics[b.Metric] && b.Metric != MetricTotalScore {
			return fmt.Errorf("%w: unknown band metric %q", ErrConfigurationInvalid, b.Metric)
		}
		if b.Label == "" {
			return fmt.Errorf("%w: band for %q has no label", ErrConfigurationInvalid, b.Metric)
		}
		switch b.Kind {
		case KindStrength, KindImprovement, KindNeutral:
		default:
			return fmt.Errorf("%w: band %q has unknown kind %q", ErrConfigurationInvalid, b.Label, b.Kind)
		}
		if !b.Undefined && !(b.Lower < b.Upper) {
			return fmt.Errorf("%w: band %q needs lower < upper", ErrConfigurationInvalid, b.Label)
		}
		byMetric[b.Metric] = append(byMetric[b.Metric], b)
	}

	for metric, rows := range byMetric {
		undefined := 0
		for i, a := range rows {
			if a.Undefined {
				undefined++
				continue
			}
			for _, b := range rows[i+1:] {
				if b.Undefined {
					continue
				}
				if a.Lower < b.Upper && b.Lower < a.Upper {
					return fmt.Errorf("%w: bands %q and %q overlap for %q", ErrConfigurationInvalid, a.Label, b.Label, metric)
				}
			}
		}
		if undefined > 1 {
			return fmt.Errorf("%w: more than one undefined band for %q", ErrConfigurationInvalid, metric)
		}
	}
	return nil
}

// DefaultBands returns the standard feedback table.
func DefaultBands() []Band {
	return []Band{
		{Metric: MetricPitchVariation, Undefined: true, Label: "no pitch detected", Kind: KindNeutral,
			Message: "No voiced pitch could be tracked. Check the recording level and microphone placement."},
		{Metric: MetricPitchVariation, Lower: 0, Upper: 0.03, Label: "monotone", Kind: KindImprovement,
			Message: "Your pitch stays very flat. Vary your intonation to emphasise key points."},
		{Metric: MetricPitchVariation, Lower: 0.03, Upper: 0.12, Label: "expressive pitch", Kind: KindStrength,
			Message: "Your pitch moves naturally and keeps the listener engaged."},
		{Metric: MetricPitchVariation, Lower: 0.12, Upper: Unbounded, Label: "erratic pitch", Kind: KindImprovement,
			Message: "Your pitch swings widely. Aim for steadier intonation between emphasised words."},

		{Metric: MetricAverageVolume, Lower: 0, Upper: 0.02, Label: "too quiet", Kind: KindImprovement,
			Message: "You are hard to hear. Project your voice or move closer to the microphone."},
		{Metric: MetricAverageVolume, Lower: 0.02, Upper: 0.12, Label: "clear volume", Kind: KindStrength,
			Message: "Your volume is clear and comfortable to listen to."},
		{Metric: MetricAverageVolume, Lower: 0.12, Upper: Unbounded, Label: "too loud", Kind: KindImprovement,
			Message: "You are speaking very loudly. Ease off to sound more conversational."},

		{Metric: MetricSpeakingRate, Lower: 0, Upper: 2, Label: "slow pace", Kind: KindImprovement,
			Message: "Your pace is slow. Pick up the tempo to keep momentum."},
		{Metric: MetricSpeakingRate, Lower: 2, Upper: 4.5, Label: "steady pace", Kind: KindStrength,
			Message: "Your speaking pace is easy to follow."},
		{Metric: MetricSpeakingRate, Lower: 4.5, Upper: 6, Label: "fast pace", Kind: KindImprovement,
			Message: "You are speaking quickly. Slow down so each point lands."},
		{Metric: MetricSpeakingRate, Lower: 6, Upper: Unbounded, Label: "very fast pace", Kind: KindImprovement,
			Message: "You are rushing. Take a breath between sentences."},

		{Metric: MetricPauseFrequency, Lower: 0, Upper: 3, Label: "few pauses", Kind: KindImprovement,
			Message: "You rarely pause. Short pauses give the listener time to absorb ideas."},
		{Metric: MetricPauseFrequency, Lower: 3, Upper: 15, Label: "well-placed pauses", Kind: KindStrength,
			Message: "You pause regularly, which gives your answer structure."},
		{Metric: MetricPauseFrequency, Lower: 15, Upper: Unbounded, Label: "frequent pauses", Kind: KindImprovement,
			Message: "You pause very often. Try to link related ideas in one breath."},

		{Metric: MetricPauseDurationRatio, Lower: 0, Upper: 0.1, Label: "brief pauses", Kind: KindNeutral,
			Message: "Your pauses are brief."},
		{Metric: MetricPauseDurationRatio, Lower: 0.1, Upper: 0.3, Label: "measured pauses", Kind: KindStrength,
			Message: "Your pauses are long enough to let points land without losing momentum."},
		{Metric: MetricPauseDurationRatio, Lower: 0.3, Upper: Unbounded, Label: "long silences", Kind: KindImprovement,
			Message: "Silence takes up a large part of your answer. Prepare transitions to close the gaps."},

		{Metric: MetricSpeechRatio, Lower: 0, Upper: 0.6, Label: "sparse speech", Kind: KindImprovement,
			Message: "Much of the recording is silent. Keep your answer flowing."},
		{Metric: MetricSpeechRatio, Lower: 0.6, Upper: 0.95, Label: "good speech flow", Kind: KindStrength,
			Message: "You balance speaking time and pauses well."},
		{Metric: MetricSpeechRatio, Lower: 0.95, Upper: Unbounded, Label: "no breathing room", Kind: KindImprovement,
			Message: "You barely stop speaking. Leave room for emphasis and breath."},

		{Metric: MetricSpectralCentroid, Lower: 0, Upper: 1000, Label: "warm tone", Kind: KindNeutral,
			Message: "Your voice sounds warm and low in brightness."},
		{Metric: MetricSpectralCentroid, Lower: 1000, Upper: 3000, Label: "balanced tone", Kind: KindNeutral,
			Message: "Your voice has a balanced brightness."},
		{Metric: MetricSpectralCentroid, Lower: 3000, Upper: Unbounded, Label: "bright tone", Kind: KindNeutral,
			Message: "Your voice sounds bright, possibly with background hiss."},

		{Metric: MetricTotalScore, Lower: 0, Upper: 50, Label: "needs work", Kind: KindNeutral,
			Message: "Overall your delivery needs work. Focus on the improvements below."},
		{Metric: MetricTotalScore, Lower: 50, Upper: 75, Label: "solid delivery", Kind: KindNeutral,
			Message: "Overall a solid delivery with a few areas to polish."},
		{Metric: MetricTotalScore, Lower: 75, Upper: Unbounded, Label: "strong delivery", Kind: KindNeutral,
			Message: "Overall a strong, confident delivery."},
	}
}
