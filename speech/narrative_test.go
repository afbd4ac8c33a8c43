package speech

import (
	"errors"
	"reflect"
	"testing"
)

func statementFor(report NarrativeReport, metric Metric) (Statement, bool) {
	for _, st := range report.Statements {
		if st.Metric == metric {
			return st, true
		}
	}
	return Statement{}, false
}

func TestDefaultBandsAreValid(t *testing.T) {
	t.Parallel()

	if err := ValidateBands(DefaultBands()); err != nil {
		t.Fatalf("default bands invalid: %v", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestNarrateIdealMetrics(t *testing.T) {
	t.Parallel()

	m := idealMetrics()
	scores := ScoreMetrics(m, DefaultCriteria())
	report := Narrate(m, scores, DefaultBands())

	want := map[Metric]string{
		MetricPitchVariation:     "expressive pitch",
		MetricAverageVolume:      "clear volume",
		MetricSpeakingRate:       "steady pace",
		MetricPauseFrequency:     "well-placed pauses",
		MetricPauseDurationRatio: "measured pauses",
		MetricSpeechRatio:        "good speech flow",
		MetricTotalScore:         "strong delivery",
	}
	for metric, label := range want {
		st, ok := statementFor(report, metric)
		if !ok {
			t.Fatalf("missing statement for %s", metric)
		}
		if st.Band != label {
			t.Errorf("%s: band %q, want %q", metric, st.Band, label)
		}
	}
	if len(report.Improvements) != 0 {
		t.Fatalf("ideal metrics should have no improvements, got %v", report.Improvements)
	}
	if len(report.Strengths) != 6 {
		t.Fatalf("expected 6 strengths, got %v", report.Strengths)
	}
}

func TestNarrateMonotoneAndMissingPitch(t *testing.T) {
	t.Parallel()

	m := idealMetrics()
	flat := 0.0
	m.PitchVariation = &flat

	report := Narrate(m, ScoreMetrics(m, DefaultCriteria()), DefaultBands())
	st, _ := statementFor(report, MetricPitchVariation)
	if st.Band != "monotone" || st.Kind != KindImprovement {
		t.Fatalf("expected monotone improvement, got %+v", st)
	}

	m.PitchVariation = nil
	report = Narrate(m, ScoreMetrics(m, DefaultCriteria()), DefaultBands())
	st, _ = statementFor(report, MetricPitchVariation)
	if st.Band != "no pitch detected" || st.Value != nil {
		t.Fatalf("expected the undefined-pitch band without a value, got %+v", st)
	}
	for _, label := range report.Improvements {
		if label == "monotone" {
			t.Fatalf("missing pitch must not be reported as monotone")
		}
	}
}

func TestNarrateBandEdgesAreHalfOpen(t *testing.T) {
	t.Parallel()

	bands := []Band{
		{Metric: MetricSpeakingRate, Lower: 0, Upper: 2, Label: "slow", Kind: KindImprovement},
		{Metric: MetricSpeakingRate, Lower: 2, Upper: 4, Label: "ok", Kind: KindStrength},
	}

	m := SpeechMetrics{SpeakingRate: 2}
	report := Narrate(m, ScoreBreakdown{}, bands)
	if len(report.Statements) != 1 || report.Statements[0].Band != "ok" {
		t.Fatalf("value on an edge belongs to the upper band, got %+v", report.Statements)
	}

	m.SpeakingRate = 4
	report = Narrate(m, ScoreBreakdown{}, bands)
	if len(report.Statements) != 0 {
		t.Fatalf("value past the last band should be skipped, got %+v", report.Statements)
	}
}

func TestNarrateIsDeterministic(t *testing.T) {
	t.Parallel()

	m := idealMetrics()
	m.SpeakingRate = 5.1
	scores := ScoreMetrics(m, DefaultCriteria())

	first := Narrate(m, scores, DefaultBands())
	for i := 0; i < 10; i++ {
		if again := Narrate(m, scores, DefaultBands()); !reflect.DeepEqual(first, again) {
			t.Fatalf("narrative changed between runs")
		}
	}
}

func TestValidateBandsRejectsOverlap(t *testing.T) {
	t.Parallel()

	bands := []Band{
		{Metric: MetricSpeechRatio, Lower: 0, Upper: 0.6, Label: "a", Kind: KindImprovement},
		{Metric: MetricSpeechRatio, Lower: 0.5, Upper: 1, Label: "b", Kind: KindStrength},
	}
	if err := ValidateBands(bands); !errors.Is(err, ErrConfigurationInvalid) {
		t.Fatalf("expected overlap error, got %v", err)
	}

	inverted := []Band{{Metric: MetricSpeechRatio, Lower: 1, Upper: 0, Label: "x", Kind: KindNeutral}}
	if err := ValidateBands(inverted); !errors.Is(err, ErrConfigurationInvalid) {
		t.Fatalf("expected inverted band error, got %v", err)
	}

	badKind := []Band{{Metric: MetricSpeechRatio, Lower: 0, Upper: 1, Label: "x", Kind: "great"}}
	if err := ValidateBands(badKind); !errors.Is(err, ErrConfigurationInvalid) {
		t.Fatalf("expected kind error, got %v", err)
	}
}
