package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// burstFixture is 10s of audio: 150 Hz from 0-4s and 5.5-9.5s, silent
// otherwise.
func burstFixture() Signal {
	return synthSine(10, 150, burst{0, 4}, burst{5.5, 9.5})
}

func TestAnalyzeBurstFixture(t *testing.T) {
	t.Parallel()

	analysis, err := Analyze(context.Background(), burstFixture(), DefaultConfig())
	require.NoError(t, err)
	m := analysis.Metrics

	assert.Equal(t, 10.0, m.TotalDuration)
	assert.Equal(t, 431, m.FrameCount)

	// The 0.5s trailing silence loses a few frames to the smoothing edge and
	// falls under the 0.5s floor; only the interior gap is a pause.
	require.Equal(t, 1, m.PauseCount)
	assert.InDelta(t, 4.0, m.Pauses[0].Start, 0.1)
	assert.InDelta(t, 1.5, m.TotalPauseDuration, 0.2)
	assert.InDelta(t, 0.85, m.SpeechRatio, 0.03)
	assert.InDelta(t, 1-m.SpeechRatio, m.PauseDurationRatio, 1e-12)
	assert.InDelta(t, 6.0, m.PauseFrequency, 1e-9)

	require.True(t, m.PitchDetected())
	assert.Less(t, *m.PitchVariation, 0.03)
	assert.InDelta(t, 150, *m.MeanPitchHz, 11)

	assert.GreaterOrEqual(t, m.OnsetCount, 1)
	assert.Equal(t, float64(m.OnsetCount)/10, m.SpeakingRate)
	assert.Greater(t, m.MeanSpectralCentroid, 0.0)
	assert.Less(t, m.MeanSpectralCentroid, 2000.0)

	assert.GreaterOrEqual(t, analysis.Scores.Total, 0)
	assert.LessOrEqual(t, analysis.Scores.Total, 100)
}

func TestAnalyzeBurstFixtureCountsTrailingPause(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinPauseDuration = 0.4

	analysis, err := Analyze(context.Background(), burstFixture(), cfg)
	require.NoError(t, err)
	m := analysis.Metrics

	require.Equal(t, 2, m.PauseCount)
	assert.InDelta(t, 4.0, m.Pauses[0].Start, 0.1)
	assert.InDelta(t, 9.5, m.Pauses[1].Start, 0.1)
	assert.InDelta(t, 1.8, m.TotalPauseDuration, 0.1)
	assert.InDelta(t, 0.82, m.SpeechRatio, 0.02)
	assert.Less(t, m.Pauses[0].End, m.Pauses[1].Start)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	t.Parallel()

	analyzer, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)

	sig := synthSine(4, 180, burst{0.1, 1.7}, burst{2.4, 3.8})
	first, err := analyzer.Analyze(context.Background(), sig)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), sig)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("analysis differs between runs (-first +second):\n%s", diff)
	}
}

func TestAnalyzeMonotoneNarrative(t *testing.T) {
	t.Parallel()

	analysis, err := Analyze(context.Background(), synthSine(3, 150, burst{0, 3}), DefaultConfig())
	require.NoError(t, err)

	require.NotNil(t, analysis.Metrics.PitchVariation)
	assert.InDelta(t, 0, *analysis.Metrics.PitchVariation, 1e-9)

	st, ok := statementFor(analysis.Report, MetricPitchVariation)
	require.True(t, ok)
	assert.Equal(t, "monotone", st.Band)
	assert.Contains(t, analysis.Report.Improvements, "monotone")
}

func TestAnalyzeSilence(t *testing.T) {
	t.Parallel()

	analysis, err := Analyze(context.Background(), synthSine(1, 150), DefaultConfig())
	require.NoError(t, err)
	m := analysis.Metrics

	assert.Nil(t, m.PitchVariation)
	assert.Equal(t, 0.0, analysis.Scores.PitchScore)
	assert.Equal(t, 1, m.PauseCount)
	assert.Equal(t, 0.0, m.SpeechRatio)
	assert.Equal(t, 0, m.OnsetCount)

	st, ok := statementFor(analysis.Report, MetricPitchVariation)
	require.True(t, ok)
	assert.Equal(t, "no pitch detected", st.Band)
}

func TestAnalyzeOutOfBandTone(t *testing.T) {
	t.Parallel()

	analysis, err := Analyze(context.Background(), synthSine(2, 1000, burst{0, 2}), DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, analysis.Metrics.PitchVariation)
	assert.Equal(t, 0, analysis.Metrics.VoicedFrames)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Analyze(ctx, Signal{SampleRate: testSampleRate}, DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptySignal)

	_, err = Analyze(ctx, Signal{Samples: make([]float64, 100), SampleRate: testSampleRate}, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Analyze(ctx, Signal{Samples: make([]float64, 4096), SampleRate: -1}, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg := DefaultConfig()
	cfg.PitchMinHz = 300
	_, err = Analyze(ctx, burstFixture(), cfg)
	assert.ErrorIs(t, err, ErrConfigurationInvalid)

	cfg = DefaultConfig()
	cfg.HopSize = 0
	_, err = NewAnalyzer(cfg)
	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, burstFixture(), DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyzerConfigIsACopy(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	analyzer, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	cfg.Criteria[0].Weight = 0
	got := analyzer.Config()
	assert.Equal(t, 25.0, got.Criteria[0].Weight)

	got.Bands[0].Label = "changed"
	assert.NotEqual(t, "changed", analyzer.Config().Bands[0].Label)
}
