package storage

import (
	"livecheck/internal/config"
	"livecheck/internal/domain"
)

// Storage persists and loads run reports (e.g. for the failures viewer).
type Storage interface {
	Save(report *domain.RunReport) error
	Load() (*domain.RunReport, error)
}

// JSONStorage stores reports in a JSON file at the configured report path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's report path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
