package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speech-coach/models"
	"speech-coach/utils"
)

var (
	// ErrNotFound is returned when no record has the given ID.
	ErrNotFound = errors.New("analysis not found")
	// ErrDisabled is returned by NewClient when DB_TYPE is "none".
	ErrDisabled = errors.New("analysis store disabled")
)

// Client stores analysis history.
type Client interface {
	Close() error
	StoreAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (models.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, id string) error
}

// NewClient opens the store selected by DB_TYPE (sqlite, mongo or none).
func NewClient(ctx context.Context) (Client, error) {
	dbType := strings.ToLower(utils.GetEnv("DB_TYPE", "sqlite"))

	switch dbType {
	case "sqlite":
		return NewSQLiteClient(utils.GetEnv("DB_DSN", "db/speech-coach.sqlite3"))
	case "mongo", "mongodb":
		uri := utils.GetEnv("MONGO_URI", "mongodb://localhost:27017")
		return NewMongoClient(ctx, uri, utils.GetEnv("MONGO_DB", "speech_coach"))
	case "none":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// prepareRecord fills the ID, timestamp and score summary before a write.
func prepareRecord(record *models.AnalysisRecord) error {
	if record == nil || record.Analysis == nil {
		return errors.New("analysis record is empty")
	}
	if record.ID == "" {
		record.ID = utils.GenerateUniqueID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	// mongo keeps millisecond precision
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	record.TotalScore = record.Analysis.Scores.Total
	record.Duration = record.Analysis.Metrics.TotalDuration
	return nil
}
