package storage

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schema defines the complete relational layout: one row per trajectory,
// one per experience (owned by a trajectory), one per follow-up (owned by
// an experience), and one per vector snapshot — snapshots may belong to a
// single experience (experience_id set) or to the trajectory's overall
// history (experience_id NULL), mirroring core.Trajectory.VectorHistory.
const schema = `
CREATE TABLE IF NOT EXISTS schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trajectories (
    user_id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS experiences (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT NOT NULL,
    context TEXT,
    user_rating REAL NOT NULL DEFAULT 0,
    timestamp TEXT NOT NULL,
    provisional_intention TEXT NOT NULL DEFAULT '',
    intention_confidence REAL NOT NULL DEFAULT 0,
    resonance_score REAL NOT NULL DEFAULT 0,
    quality_score REAL NOT NULL DEFAULT 0,
    quality_dimensions TEXT,
    propagated INTEGER NOT NULL DEFAULT 0,
    propagation_events TEXT,
    matrix_position TEXT,
    seq INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES trajectories(user_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS follow_ups (
    id TEXT PRIMARY KEY,
    experience_id TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    source TEXT NOT NULL,
    text TEXT NOT NULL,
    created_something INTEGER NOT NULL DEFAULT 0,
    shared_or_taught INTEGER NOT NULL DEFAULT 0,
    inspired_further_action INTEGER NOT NULL DEFAULT 0,
    creation_magnitude REAL NOT NULL DEFAULT 0,
    creation_description TEXT,
    seq INTEGER NOT NULL,
    FOREIGN KEY (experience_id) REFERENCES experiences(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS horizon_assessments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    experience_id TEXT NOT NULL,
    horizon TEXT NOT NULL,
    score REAL,
    note TEXT,
    seq INTEGER NOT NULL,
    FOREIGN KEY (experience_id) REFERENCES experiences(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS vector_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    experience_id TEXT,
    horizon TEXT NOT NULL DEFAULT '',
    direction REAL NOT NULL,
    magnitude REAL NOT NULL,
    confidence REAL NOT NULL,
    timestamp TEXT NOT NULL,
    seq INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES trajectories(user_id) ON DELETE CASCADE,
    FOREIGN KEY (experience_id) REFERENCES experiences(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS conversation_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    mode TEXT,
    metrics TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_logs_session ON conversation_logs(session_id);
CREATE INDEX IF NOT EXISTS idx_conversation_logs_user ON conversation_logs(user_id);
CREATE INDEX IF NOT EXISTS idx_experiences_user ON experiences(user_id);
CREATE INDEX IF NOT EXISTS idx_experiences_timestamp ON experiences(timestamp);
CREATE INDEX IF NOT EXISTS idx_followups_experience ON follow_ups(experience_id);
CREATE INDEX IF NOT EXISTS idx_horizons_experience ON horizon_assessments(experience_id);
CREATE INDEX IF NOT EXISTS idx_vectorsnaps_user ON vector_snapshots(user_id, experience_id);
CREATE INDEX IF NOT EXISTS idx_vectorsnaps_trajectory ON vector_snapshots(user_id) WHERE experience_id IS NULL;
`

// initializeSchema creates all tables and indexes and records the schema version.
func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'version'").Scan(&currentVersion)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_metadata (key, value) VALUES ('version', ?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query schema version: %w", err)
	case currentVersion != schemaVersion:
		return fmt.Errorf("schema version mismatch: expected %d, got %d", schemaVersion, currentVersion)
	}
	return nil
}

// configureSQLite sets pragmas balancing durability and single-writer throughput.
func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -32000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}
