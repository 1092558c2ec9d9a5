package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pth/internal/domain"
)

// Save writes the scan summary to the configured JSON output file.
func (s *JSONStorage) Save(summary *domain.ScanSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last scan summary from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.ScanSummary, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var summary domain.ScanSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &summary, nil
}
