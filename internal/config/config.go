// Package config loads the engine's environment-driven configuration and
// builds the concrete Storage/WebClient/logging components it names.
//
// Configuration is read from environment variables (an optional .env file
// is loaded first); there is no config-file layer — the engine has few
// enough knobs that env vars plus sane defaults cover it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/chusla/improvement-axiom/internal/storage"
	"github.com/chusla/improvement-axiom/internal/storage/neo4jstore"
)

// Config is the engine's full environment-derived configuration.
type Config struct {
	Storage storage.Config
	Neo4j   Neo4jConfig
	Web     WebConfig
	Logging LoggingConfig
}

// Neo4jConfig configures the optional lineage read-replica.
type Neo4jConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

// WebConfig selects and configures the WebClient implementation.
type WebConfig struct {
	Kind           string // "http" | "mock" | "none"
	TimeoutMs      int
	SearchEndpoint string
	SearchAPIKey   string
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads an optional .env file (silently ignored if absent) and then
// reads the full configuration from the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only, without
// touching .env. Exposed separately so tests can set env vars directly.
func FromEnv() Config {
	cfg := Config{
		Storage: storage.ConfigFromEnv(),
		Neo4j:   neo4jConfigFromEnv(),
		Web:     webConfigFromEnv(),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	return cfg
}

func neo4jConfigFromEnv() Neo4jConfig {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		return Neo4jConfig{}
	}
	return Neo4jConfig{
		Enabled:  true,
		URI:      uri,
		Username: getEnv("NEO4J_USER", "neo4j"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: getEnv("NEO4J_DATABASE", "neo4j"),
	}
}

// AsClientConfig adapts Neo4jConfig to neo4jstore.Config.
func (c Neo4jConfig) AsClientConfig() neo4jstore.Config {
	return neo4jstore.Config{
		URI:      c.URI,
		Username: c.Username,
		Password: c.Password,
		Database: c.Database,
		Timeout:  5 * time.Second,
	}
}

func webConfigFromEnv() WebConfig {
	cfg := WebConfig{
		Kind:      strings.ToLower(getEnv("WEB_CLIENT", "none")),
		TimeoutMs: 10_000,
	}
	if v := os.Getenv("WEB_CLIENT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	cfg.SearchEndpoint = os.Getenv("WEB_SEARCH_ENDPOINT")
	cfg.SearchAPIKey = os.Getenv("WEB_SEARCH_API_KEY")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
