package storage

import (
	"os"
	"strconv"
)

// StorageType names a supported storage backend.
type StorageType string

const (
	StorageTypeMemory StorageType = "memory"
	StorageTypeSQLite StorageType = "sqlite"
)

// Config holds storage configuration.
type Config struct {
	Type          StorageType
	SQLitePath    string
	SQLiteTimeout int
	FallbackType  StorageType
}

// DefaultConfig returns the in-memory default.
func DefaultConfig() Config {
	return Config{
		Type:          StorageTypeMemory,
		SQLitePath:    "./data/improvement-axiom.db",
		SQLiteTimeout: 5000,
	}
}

// ConfigFromEnv reads storage configuration from the environment:
//   - STORAGE_TYPE: "memory" (default) or "sqlite"
//   - SQLITE_PATH: path to the SQLite database file
//   - SQLITE_TIMEOUT: busy timeout in milliseconds
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.FallbackType = StorageTypeMemory

	if t := os.Getenv("STORAGE_TYPE"); t != "" {
		cfg.Type = StorageType(t)
	}
	if p := os.Getenv("SQLITE_PATH"); p != "" {
		cfg.SQLitePath = p
	}
	if to := os.Getenv("SQLITE_TIMEOUT"); to != "" {
		if v, err := strconv.Atoi(to); err == nil && v > 0 {
			cfg.SQLiteTimeout = v
		}
	}
	return cfg
}
