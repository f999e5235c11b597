package storage

import (
	"context"
	"fmt"

	"github.com/dafibh/spendwise/spendwise-backend/internal/config"
	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/postgres"
	"github.com/rs/zerolog/log"
)

// Result is an opened store plus whatever must be released on shutdown
type Result struct {
	Store   domain.KeyValueStore
	Cleanup func()
}

func noCleanup() {}

// Open creates the KeyValueStore selected by cfg.StorageDriver
func Open(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage, data will not survive a restart")
		return &Result{Store: NewMemoryStore(), Cleanup: noCleanup}, nil

	case config.StorageFile:
		store, err := NewFileStore(cfg.StorageFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		log.Info().Str("path", cfg.StorageFilePath).Msg("Initialized file storage")
		return &Result{Store: store, Cleanup: noCleanup}, nil

	case config.StorageSQLite:
		store, err := NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		log.Info().Str("db_path", cfg.SQLiteDBPath).Msg("Initialized sqlite storage")
		return &Result{Store: store, Cleanup: func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close sqlite storage")
			}
		}}, nil

	case config.StoragePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := postgres.NewKVRepository(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("Connected to database")
		return &Result{Store: store, Cleanup: pool.Close}, nil

	case config.StorageS3:
		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to open s3 storage: %w", err)
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Str("prefix", cfg.S3.Prefix).Msg("Initialized S3 storage")
		return &Result{Store: store, Cleanup: noCleanup}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
