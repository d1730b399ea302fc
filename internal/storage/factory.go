package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/config"
)

// NewMetricStore selects a backend from configuration.
func NewMetricStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (MetricStore, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
