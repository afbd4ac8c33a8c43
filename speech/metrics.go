package speech

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Metric names a scalar that can be scored or described by a band table.
type Metric string

const (
	MetricPitchVariation     Metric = "pitch_variation"
	MetricAverageVolume      Metric = "average_volume"
	MetricSpeakingRate       Metric = "speaking_rate"
	MetricPauseFrequency     Metric = "pause_frequency"
	MetricPauseDurationRatio Metric = "pause_duration_ratio"
	MetricSpeechRatio        Metric = "speech_ratio"
	MetricSpectralCentroid   Metric = "spectral_centroid"
	MetricZeroCrossingRate   Metric = "zero_crossing_rate"

	// MetricTotalScore is only meaningful in band tables; it reads the
	// rounded total of a ScoreBreakdown.
	MetricTotalScore Metric = "total_score"
)

// scoringMetrics lists the metrics SpeechMetrics.Value can resolve.
var scoringMetrics = map[Metric]bool{
	MetricPitchVariation:     true,
	MetricAverageVolume:      true,
	MetricSpeakingRate:       true,
	MetricPauseFrequency:     true,
	MetricPauseDurationRatio: true,
	MetricSpeechRatio:        true,
	MetricSpectralCentroid:   true,
	MetricZeroCrossingRate:   true,
}

// SpeechMetrics is the aggregate of every scalar derived from one signal.
// PitchVariation and MeanPitchHz are nil when no frame carried a reliable
// pitch.
type SpeechMetrics struct {
	TotalDuration float64 `json:"totalDuration"`
	SampleRate    int     `json:"sampleRate"`
	FrameCount    int     `json:"frameCount"`

	PitchVariation *float64 `json:"pitchVariation"`
	MeanPitchHz    *float64 `json:"meanPitchHz"`
	VoicedFrames   int      `json:"voicedFrames"`

	AverageVolume float64 `json:"averageVolume"`

	Pauses             []PauseSegment `json:"pauses"`
	PauseCount         int            `json:"pauseCount"`
	TotalPauseDuration float64        `json:"totalPauseDuration"`
	PauseFrequency     float64        `json:"pauseFrequency"`
	PauseDurationRatio float64        `json:"pauseDurationRatio"`
	SpeechRatio        float64        `json:"speechRatio"`

	OnsetCount   int     `json:"onsetCount"`
	SpeakingRate float64 `json:"speakingRate"`

	MeanSpectralCentroid float64 `json:"meanSpectralCentroid"`
	MeanZeroCrossingRate float64 `json:"meanZeroCrossingRate"`
}

// PitchDetected reports whether any frame carried a reliable pitch.
func (m SpeechMetrics) PitchDetected() bool {
	return m.PitchVariation != nil
}

// Value resolves a metric by name. ok is false for an undefined pitch
// variation and for names SpeechMetrics does not carry.
func (m SpeechMetrics) Value(metric Metric) (value float64, ok bool) {
	switch metric {
	case MetricPitchVariation:
		if m.PitchVariation == nil {
			return 0, false
		}
		return *m.PitchVariation, true
	case MetricAverageVolume:
		return m.AverageVolume, true
	case MetricSpeakingRate:
		return m.SpeakingRate, true
	case MetricPauseFrequency:
		return m.PauseFrequency, true
	case MetricPauseDurationRatio:
		return m.PauseDurationRatio, true
	case MetricSpeechRatio:
		return m.SpeechRatio, true
	case MetricSpectralCentroid:
		return m.MeanSpectralCentroid, true
	case MetricZeroCrossingRate:
		return m.MeanZeroCrossingRate, true
	default:
		return 0, false
	}
}

type frameResults struct {
	pitch    PitchContour
	loudness LoudnessEnvelope
	pauses   PauseSet
	onsets   OnsetSet
	spectral SpectralSummary
}

// newSpeechMetrics folds the analyzer outputs into SpeechMetrics. duration
// is the one denominator for every rate and ratio.
func newSpeechMetrics(sig Signal, frames Frames, r frameResults) SpeechMetrics {
	duration := sig.Duration()

	m := SpeechMetrics{
		TotalDuration:        duration,
		SampleRate:           sig.SampleRate,
		FrameCount:           frames.Count,
		AverageVolume:        r.loudness.AverageVolume(),
		OnsetCount:           r.onsets.Count(),
		MeanSpectralCentroid: r.spectral.MeanCentroid,
		MeanZeroCrossingRate: r.spectral.MeanZeroCrossingRate,
	}

	voiced := r.pitch.Voiced()
	m.VoicedFrames = len(voiced)
	if variation, ok := PitchVariation(voiced); ok {
		meanHz := meanOrZero(voiced)
		m.PitchVariation = &variation
		m.MeanPitchHz = &meanHz
	}

	m.Pauses = make([]PauseSegment, len(r.pauses.Segments))
	copy(m.Pauses, r.pauses.Segments)
	m.PauseCount = r.pauses.Count()
	m.TotalPauseDuration = r.pauses.TotalDuration()

	// The frame grid can overhang the last sample by under one hop, so the
	// pause share is capped at the whole signal.
	m.PauseDurationRatio = math.Min(m.TotalPauseDuration/duration, 1)
	m.SpeechRatio = 1 - m.PauseDurationRatio
	m.PauseFrequency = float64(m.PauseCount) / (duration / 60)
	m.SpeakingRate = float64(m.OnsetCount) / duration

	return m
}

func meanOrZero(values []float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}
