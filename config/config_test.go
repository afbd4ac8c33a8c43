package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"speech-coach/speech"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "speech-coach.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	if diff := cmp.Diff(speech.DefaultConfig(), cfg); diff != "" {
		t.Fatalf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesScalars(t *testing.T) {
	path := writeConfig(t, `
analysis:
  min_pause_duration: 0.4
  silence_ratio: 0.1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.MinPauseDuration)
	assert.Equal(t, 0.1, cfg.SilenceRatio)
	assert.Equal(t, 2048, cfg.FrameSize)
	assert.Equal(t, speech.DefaultCriteria(), cfg.Criteria)
}

func TestLoadReplacesCriteriaTable(t *testing.T) {
	path := writeConfig(t, `
analysis:
  criteria:
    - metric: pitch_variation
      weight: 60
      ideal: 0.05
      span: 0.05
    - metric: speech_ratio
      weight: 40
      ideal: 0.85
      span: 0.85
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Criteria, 2)
	assert.Equal(t, speech.Criterion{Metric: speech.MetricSpeechRatio, Weight: 40, Ideal: 0.85, Span: 0.85}, cfg.Criteria[1])
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := writeConfig(t, `
analysis:
  criteria:
    - metric: pitch_variation
      weight: 90
      ideal: 0.05
      span: 0.05
`)

	_, err := Load(path)
	if !errors.Is(err, speech.ErrConfigurationInvalid) {
		t.Fatalf("Load: err = %v, want ErrConfigurationInvalid", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPEECHCOACH_ANALYSIS_MIN_PAUSE_DURATION", "0.3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.MinPauseDuration)
}

func TestRenderIsLoadable(t *testing.T) {
	cfg := speech.DefaultConfig()
	cfg.MinPauseDuration = 0.45

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "min_pause_duration: 0.45")

	loaded, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("rendered config did not load back (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
