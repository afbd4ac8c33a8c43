package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"speech-coach/models"
	"speech-coach/utils"
)

const reportsFile = "reports.json"

// Store keeps analysis records in a single JSON file under its directory.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore returns a store writing to dir/reports.json.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, reportsFile)}
}

// loadInternal reads all records from disk (without lock)
func (s *Store) loadInternal() ([]models.AnalysisRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.AnalysisRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading reports file: %w", err)
	}

	if len(data) == 0 {
		return []models.AnalysisRecord{}, nil
	}

	var records []models.AnalysisRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error unmarshaling reports: %w", err)
	}
	return records, nil
}

// LoadReports returns every saved record, newest first.
func (s *Store) LoadReports() ([]models.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.loadInternal()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// GetReport returns the record with the given ID.
func (s *Store) GetReport(id string) (models.AnalysisRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.loadInternal()
	if err != nil {
		return models.AnalysisRecord{}, false, err
	}
	for _, record := range records {
		if record.ID == id {
			return record, true, nil
		}
	}
	return models.AnalysisRecord{}, false, nil
}

// SaveReport appends record to the file, assigning an ID and timestamp when
// missing.
func (s *Store) SaveReport(record *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadInternal()
	if err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = utils.GenerateUniqueID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Analysis != nil {
		record.TotalScore = record.Analysis.Scores.Total
		record.Duration = record.Analysis.Metrics.TotalDuration
	}

	records = append(records, *record)
	return s.writeInternal(records)
}

// DeleteReport removes the record with the given ID. It reports false when
// no record matched.
func (s *Store) DeleteReport(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadInternal()
	if err != nil {
		return false, err
	}

	kept := records[:0]
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	return true, s.writeInternal(kept)
}

// writeInternal replaces the file with records (without lock)
func (s *Store) writeInternal(records []models.AnalysisRecord) error {
	if err := utils.CreateFolder(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling reports: %w", err)
	}

	// write then rename so readers never see a half-written file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing reports file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("error replacing reports file: %w", err)
	}
	return nil
}
