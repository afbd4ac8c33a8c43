package config

import (
	"fmt"
	"strings"

	"speech-coach/speech"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g.
// SPEECHCOACH_ANALYSIS_MIN_PAUSE_DURATION=0.4.
const EnvPrefix = "SPEECHCOACH"

// File is the layout of a config file. Only the analysis section exists so
// far; process settings come from the environment.
type File struct {
	Analysis speech.Config `yaml:"analysis" mapstructure:"analysis"`
}

// scalar keys that may be overridden from the environment
var envKeys = []string{
	"analysis.frame_size",
	"analysis.hop_size",
	"analysis.pitch_min_hz",
	"analysis.pitch_max_hz",
	"analysis.pitch_confidence_percentile",
	"analysis.smoothing_width",
	"analysis.silence_ratio",
	"analysis.min_pause_duration",
	"analysis.onset_sensitivity",
	"analysis.onset_min_gap",
}

// Load returns speech.DefaultConfig overlaid with the YAML file at path
// (skipped when path is empty) and then with SPEECHCOACH_ environment
// variables. The result is validated.
func Load(path string) (speech.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return speech.Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return speech.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	file := File{Analysis: speech.DefaultConfig()}
	// tables given in the file replace the defaults instead of merging into them
	if v.IsSet("analysis.criteria") {
		file.Analysis.Criteria = nil
	}
	if v.IsSet("analysis.bands") {
		file.Analysis.Bands = nil
	}

	if err := v.Unmarshal(&file); err != nil {
		return speech.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := file.Analysis.Validate(); err != nil {
		return speech.Config{}, err
	}
	return file.Analysis, nil
}

// Render encodes cfg in the config file layout.
func Render(cfg speech.Config) ([]byte, error) {
	out, err := yaml.Marshal(File{Analysis: cfg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
