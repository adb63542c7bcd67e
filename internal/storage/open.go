package storage

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/personcsv/internal/config"
)

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendGCS:
		return NewGCSStore(ctx, cfg.BucketName())
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
