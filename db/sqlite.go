package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"speech-coach/models"
	"speech-coach/speech"
	"speech-coach/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

type SQLiteClient struct {
	db *sql.DB
}

var _ Client = (*SQLiteClient)(nil)

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// createTables creates the analyses table if it doesn't exist. The summary
// columns duplicate fields of the analysis document so history can be
// filtered without decoding it.
func createTables(db *sql.DB) error {
	createAnalysesTable := `
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        source TEXT,
        duration REAL NOT NULL DEFAULT 0,
        total_score INTEGER NOT NULL DEFAULT 0,
        pitch_variation REAL,
        speaking_rate REAL NOT NULL DEFAULT 0,
        speech_ratio REAL NOT NULL DEFAULT 0,
        pause_count INTEGER NOT NULL DEFAULT 0,
        latency_ms REAL NOT NULL DEFAULT 0,
        critique TEXT,
        analysis TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
    `

	if _, err := db.Exec(createAnalysesTable); err != nil {
		return fmt.Errorf("error creating analyses table: %w", err)
	}
	return nil
}

func (db *SQLiteClient) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// StoreAnalysis inserts record, assigning an ID and timestamp when missing.
func (db *SQLiteClient) StoreAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if err := prepareRecord(record); err != nil {
		return err
	}

	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("error marshaling analysis: %w", err)
	}

	metrics := record.Analysis.Metrics

	var critique *string
	if record.Critique != "" {
		critique = &record.Critique
	}

	_, err = db.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, created_at, source, duration, total_score, pitch_variation,
			speaking_rate, speech_ratio, pause_count, latency_ms, critique, analysis
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.CreatedAt,
		record.Source,
		record.Duration,
		record.TotalScore,
		metrics.PitchVariation,
		metrics.SpeakingRate,
		metrics.SpeechRatio,
		metrics.PauseCount,
		record.LatencyMs,
		critique,
		string(analysisJSON),
	)
	if err != nil {
		return fmt.Errorf("error storing analysis: %w", err)
	}
	return nil
}

const selectAnalyses = `
	SELECT id, created_at, source, duration, total_score, latency_ms, critique, analysis
	FROM analyses`

// GetAnalyses returns the most recent records first. A non-positive limit
// returns all of them.
func (db *SQLiteClient) GetAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	query := selectAnalyses + " ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return records, nil
}

// GetAnalysis returns the record with the given ID or ErrNotFound.
func (db *SQLiteClient) GetAnalysis(ctx context.Context, id string) (models.AnalysisRecord, error) {
	row := db.db.QueryRowContext(ctx, selectAnalyses+" WHERE id = ?", id)

	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AnalysisRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, err
}

func (db *SQLiteClient) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := db.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (models.AnalysisRecord, error) {
	var (
		record       models.AnalysisRecord
		source       sql.NullString
		critique     sql.NullString
		analysisJSON string
	)

	err := row.Scan(
		&record.ID,
		&record.CreatedAt,
		&source,
		&record.Duration,
		&record.TotalScore,
		&record.LatencyMs,
		&critique,
		&analysisJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AnalysisRecord{}, err
	}
	if err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("error scanning analysis: %w", err)
	}

	record.Source = source.String
	record.Critique = critique.String

	var analysis speech.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("error unmarshaling analysis: %w", err)
	}
	record.Analysis = &analysis

	return record, nil
}
