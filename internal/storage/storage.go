package storage

import (
	"pth/internal/config"
	"pth/internal/domain"
)

// Storage persists and loads scan summaries (e.g. for the view command).
type Storage interface {
	Save(summary *domain.ScanSummary) error
	Load() (*domain.ScanSummary, error)
}

// JSONStorage stores summaries in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
