package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// NewStorage constructs the backend named by cfg.Type, falling back to
// cfg.FallbackType (when set) if the preferred backend fails to initialize —
// a misconfigured SQLITE_PATH degrades the server to in-memory operation
// instead of refusing to start.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeMemory, "":
		log.Info().Msg("initializing in-memory storage")
		return NewMemoryStorage(), nil

	case StorageTypeSQLite:
		log.Info().Str("path", cfg.SQLitePath).Msg("initializing sqlite storage")
		s, err := NewSQLiteStorage(ctx, cfg.SQLitePath, cfg.SQLiteTimeout)
		if err != nil {
			if cfg.FallbackType != "" && cfg.FallbackType != cfg.Type {
				log.Warn().Err(err).Str("fallback", string(cfg.FallbackType)).Msg("sqlite init failed, falling back")
				return NewStorage(ctx, Config{Type: cfg.FallbackType})
			}
			return nil, fmt.Errorf("sqlite initialization failed: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv builds Storage from environment configuration.
func NewStorageFromEnv(ctx context.Context) (Storage, error) {
	return NewStorage(ctx, ConfigFromEnv())
}

// CloseStorage closes s if it implements io.Closer.
func CloseStorage(s Storage) error {
	if closer, ok := s.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
