package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"speech-coach/audio"
	"speech-coach/coach"
	"speech-coach/db"
	"speech-coach/models"
	"speech-coach/reports"
	"speech-coach/speech"
	"speech-coach/utils"

	"github.com/mdobak/go-xerrors"
)

// critic writes a qualitative critique of one analysis.
type critic interface {
	Critique(ctx context.Context, req coach.Request) (string, error)
}

// streamingCritic can also deliver the critique in pieces.
type streamingCritic interface {
	critic
	CritiqueStream(ctx context.Context, req coach.Request, onChunk func(string) error) (string, error)
}

// analysisService runs the pipeline for every front door and records the
// results. store, reports and coach are optional.
type analysisService struct {
	analyzer *speech.Analyzer
	store    db.Client
	reports  *reports.Store
	coach    critic
	logger   *slog.Logger
}

type analysisRequest struct {
	Signal         speech.Signal
	Source         string
	Transcript     string
	JobDescription string
	Coach          bool

	// OnCritiqueChunk receives the critique as it is generated when the
	// coach supports streaming.
	OnCritiqueChunk func(string) error
}

type serviceOptions struct {
	withStore bool
	withCoach bool
}

func newAnalysisService(ctx context.Context, cfg speech.Config, opts serviceOptions) (*analysisService, error) {
	logger := utils.GetLogger()

	analyzer, err := speech.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	svc := &analysisService{analyzer: analyzer, logger: logger}

	if opts.withStore {
		store, err := db.NewClient(ctx)
		switch {
		case errors.Is(err, db.ErrDisabled):
			logger.InfoContext(ctx, "analysis store disabled")
		case err != nil:
			return nil, fmt.Errorf("failed to open analysis store: %w", err)
		default:
			svc.store = store
		}

		if dir := utils.GetEnv("REPORTS_DIR"); dir != "" {
			svc.reports = reports.NewStore(dir)
		}
	}

	if opts.withCoach {
		client, err := coach.NewClient(ctx)
		switch {
		case errors.Is(err, coach.ErrMissingAPIKey):
			logger.WarnContext(ctx, "GEMINI_API_KEY not set, critiques disabled")
		case err != nil:
			return nil, err
		default:
			svc.coach = client
		}
	}

	return svc, nil
}

func (s *analysisService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// run analyzes req.Signal, optionally asks the coach for a critique, and
// persists the record when a store is configured. Critique and storage
// failures are logged and do not fail the run.
func (s *analysisService) run(ctx context.Context, req analysisRequest) (*models.AnalysisRecord, error) {
	started := time.Now()

	analysis, err := s.analyzer.Analyze(ctx, req.Signal)
	if err != nil {
		return nil, err
	}

	record := &models.AnalysisRecord{
		Source:     req.Source,
		Duration:   analysis.Metrics.TotalDuration,
		TotalScore: analysis.Scores.Total,
		Analysis:   analysis,
	}

	if req.Coach {
		if s.coach == nil {
			s.logger.WarnContext(ctx, "critique requested but no coach is configured")
		} else {
			critique, err := s.critique(ctx, req, coach.Request{
				Analysis:       analysis,
				Transcript:     req.Transcript,
				JobDescription: req.JobDescription,
			})
			if err != nil {
				err := xerrors.New(err)
				s.logger.ErrorContext(ctx, "failed to generate critique", slog.Any("error", err))
			} else {
				record.Critique = critique
			}
		}
	}

	record.LatencyMs = time.Since(started).Seconds() * 1000

	if s.store != nil {
		if err := s.store.StoreAnalysis(ctx, record); err != nil {
			err := xerrors.New(err)
			s.logger.ErrorContext(ctx, "failed to store analysis", slog.Any("error", err))
		}
	}
	if s.reports != nil {
		if err := s.reports.SaveReport(record); err != nil {
			err := xerrors.New(err)
			s.logger.ErrorContext(ctx, "failed to save report", slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("id", record.ID),
		slog.String("source", record.Source),
		slog.Int("totalScore", record.TotalScore),
		slog.Float64("duration", record.Duration),
		slog.Float64("latencyMs", record.LatencyMs),
	)

	return record, nil
}

func (s *analysisService) critique(ctx context.Context, req analysisRequest, creq coach.Request) (string, error) {
	if streamer, ok := s.coach.(streamingCritic); ok && req.OnCritiqueChunk != nil {
		return streamer.CritiqueStream(ctx, creq, req.OnCritiqueChunk)
	}
	return s.coach.Critique(ctx, creq)
}

// runRecordData decodes a client payload and runs it.
func (s *analysisService) runRecordData(ctx context.Context, rec models.RecordData, onChunk func(string) error) (*models.AnalysisRecord, error) {
	if rec.Audio == "" {
		return nil, fmt.Errorf("%w: no audio data received", speech.ErrEmptySignal)
	}

	sig, err := audio.FromRecordData(rec, audio.DefaultSampleRate)
	if err != nil {
		return nil, err
	}

	source := rec.Source
	if source == "" {
		source = "recording"
	}

	return s.run(ctx, analysisRequest{
		Signal:         sig,
		Source:         source,
		Transcript:     rec.Transcript,
		JobDescription: rec.JobDescription,
		Coach:          rec.Coach,

		OnCritiqueChunk: onChunk,
	})
}

// hasHistory reports whether past analyses can be listed. The database store
// takes precedence over the JSON reports file.
func (s *analysisService) hasHistory() bool {
	return s.store != nil || s.reports != nil
}

func (s *analysisService) listAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if s.store != nil {
		return s.store.GetAnalyses(ctx, limit)
	}
	records, err := s.reports.LoadReports()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *analysisService) getAnalysis(ctx context.Context, id string) (models.AnalysisRecord, error) {
	if s.store != nil {
		return s.store.GetAnalysis(ctx, id)
	}
	record, ok, err := s.reports.GetReport(id)
	if err != nil {
		return models.AnalysisRecord{}, err
	}
	if !ok {
		return models.AnalysisRecord{}, fmt.Errorf("%w: %s", db.ErrNotFound, id)
	}
	return record, nil
}

// deleteAnalysis removes id from every configured history.
func (s *analysisService) deleteAnalysis(ctx context.Context, id string) error {
	found := false
	if s.store != nil {
		err := s.store.DeleteAnalysis(ctx, id)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		found = err == nil
	}
	if s.reports != nil {
		deleted, err := s.reports.DeleteReport(id)
		if err != nil {
			return err
		}
		found = found || deleted
	}
	if !found {
		return fmt.Errorf("%w: %s", db.ErrNotFound, id)
	}
	return nil
}

// isClientError reports whether err was caused by the submitted audio.
func isClientError(err error) bool {
	return errors.Is(err, speech.ErrEmptySignal) ||
		errors.Is(err, speech.ErrInvalidInput) ||
		errors.Is(err, audio.ErrUnsupportedFormat) ||
		errors.Is(err, audio.ErrDecode)
}
