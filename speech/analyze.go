package speech

// Speech Delivery Analysis
//
// This package turns a decoded mono waveform into delivery metrics, a 0-100
// score and structured feedback. The pipeline works as follows:
//
// 1. Framing: the signal is cut into fixed windows on a shared hop grid
// 2. Spectrogram: every window is Hann-weighted and transformed once
// 3. Frame analyzers (run concurrently):
//    - Pitch: dominant spectral peak gated by magnitude percentile and voice band
//    - Loudness: frame RMS, moving-average smoothing, peak normalisation,
//      followed by run-length pause segmentation on the envelope
//    - Onsets: peaks of the spectral flux novelty curve
//    - Spectral: mean centroid and zero-crossing rate
// 4. Metrics: all rates and ratios share one duration denominator
// 5. Scoring: tent-shaped sub-scores summed into a rounded total
// 6. Narrative: band tables map each metric to a tagged statement
//
// No stage mutates the output of another, and the same signal and Config
// always give identical results.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"speech-coach/utils"

	"golang.org/x/sync/errgroup"
)

// Analysis is the result of one pipeline run.
type Analysis struct {
	Metrics SpeechMetrics   `json:"metrics"`
	Scores  ScoreBreakdown  `json:"scores"`
	Report  NarrativeReport `json:"report"`
}

// Analyzer runs the pipeline with a fixed, validated Config. It holds no
// mutable state and is safe for concurrent use.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewAnalyzer validates cfg and returns an Analyzer that owns a copy of it.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg.clone(), logger: utils.GetLogger()}, nil
}

// Config returns a copy of the analyzer's configuration.
func (a *Analyzer) Config() Config {
	return a.cfg.clone()
}

// Analyze is a convenience wrapper for NewAnalyzer followed by Analyze.
func Analyze(ctx context.Context, sig Signal, cfg Config) (*Analysis, error) {
	analyzer, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze(ctx, sig)
}

func (a *Analyzer) Analyze(ctx context.Context, sig Signal) (*Analysis, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if len(sig.Samples) < a.cfg.HopSize {
		return nil, fmt.Errorf("%w: %.4fs of audio is shorter than one %d-sample hop",
			ErrInvalidInput, sig.Duration(), a.cfg.HopSize)
	}

	started := time.Now()
	frames := Segment(sig, a.cfg.FrameSize, a.cfg.HopSize)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spectrogram := ComputeSpectrogram(sig, frames)

	results, err := a.runFrameAnalyzers(ctx, sig, frames, spectrogram)
	if err != nil {
		return nil, err
	}

	metrics := newSpeechMetrics(sig, frames, results)
	scores := ScoreMetrics(metrics, a.cfg.Criteria)
	report := Narrate(metrics, scores, a.cfg.Bands)

	a.logger.DebugContext(ctx, "speech analysis complete",
		slog.Float64("duration", metrics.TotalDuration),
		slog.Int("frames", frames.Count),
		slog.Int("voicedFrames", metrics.VoicedFrames),
		slog.Int("pauses", metrics.PauseCount),
		slog.Int("onsets", metrics.OnsetCount),
		slog.Int("totalScore", scores.Total),
		slog.Float64("elapsed_ms", time.Since(started).Seconds()*1000),
	)

	return &Analysis{Metrics: metrics, Scores: scores, Report: report}, nil
}

// runFrameAnalyzers fans the independent analyzers out over an errgroup.
// Each goroutine writes only its own field of the result.
func (a *Analyzer) runFrameAnalyzers(ctx context.Context, sig Signal, frames Frames, spectrogram Spectrogram) (frameResults, error) {
	var r frameResults
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.pitch = TrackPitch(spectrogram, a.cfg.PitchMinHz, a.cfg.PitchMaxHz, a.cfg.PitchConfidencePercentile)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.loudness = ProfileLoudness(sig, frames, a.cfg.SmoothingWidth)
		if err := gctx.Err(); err != nil {
			return err
		}
		r.pauses = SegmentPauses(r.loudness.Normalized, frames.PerSecond(), a.cfg.SilenceRatio, a.cfg.MinPauseDuration)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.onsets = DetectOnsets(spectrogram, frames, a.cfg.OnsetSensitivity, a.cfg.OnsetMinGap)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.spectral = ExtractSpectral(sig, frames, spectrogram)
		return nil
	})

	if err := g.Wait(); err != nil {
		return frameResults{}, err
	}
	return r, nil
}
