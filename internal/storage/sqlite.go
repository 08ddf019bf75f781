package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chusla/improvement-axiom/internal/core"
)

// SQLiteStorage persists trajectories to a SQLite database and serves reads
// from an in-memory write-through cache, keeping reads fast while writes
// stay durable.
type SQLiteStorage struct {
	db    *sql.DB
	cache *MemoryStorage
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if absent) a SQLite database at dbPath,
// configures it for single-writer durability, initializes its schema, and
// warms the read cache from whatever it already contains.
func NewSQLiteStorage(ctx context.Context, dbPath string, timeoutMs int) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", dbPath, timeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: single connection avoids SQLITE_BUSY under WAL
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", timeoutMs)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{db: db, cache: NewMemoryStorage()}
	if err := s.warmCache(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to warm cache: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) warmCache(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM trajectories`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range userIDs {
		traj, err := s.loadTrajectoryFromDB(ctx, id)
		if err != nil {
			return fmt.Errorf("warming cache for user %s: %w", id, err)
		}
		if err := s.cache.SaveTrajectory(ctx, traj); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) LoadTrajectory(ctx context.Context, userID string) (*core.Trajectory, error) {
	return s.cache.LoadTrajectory(ctx, userID)
}

func (s *SQLiteStorage) SaveTrajectory(ctx context.Context, trajectory *core.Trajectory) error {
	if trajectory == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trajectories (user_id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET updated_at = excluded.updated_at
	`, trajectory.UserID, now, now); err != nil {
		return fmt.Errorf("upsert trajectory: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM experiences WHERE user_id = ?`, trajectory.UserID); err != nil {
		return fmt.Errorf("clear experiences: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vector_snapshots WHERE user_id = ? AND experience_id IS NULL`, trajectory.UserID); err != nil {
		return fmt.Errorf("clear trajectory vector snapshots: %w", err)
	}

	for i, e := range trajectory.Experiences {
		if err := insertExperience(ctx, tx, e, i); err != nil {
			return err
		}
	}
	for i, v := range trajectory.VectorHistory {
		if err := insertVectorSnapshot(ctx, tx, trajectory.UserID, "", v, i); err != nil {
			return fmt.Errorf("insert trajectory vector snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.cache.SaveTrajectory(ctx, trajectory)
}

func (s *SQLiteStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.cache.ListUserIDs(ctx)
}

func (s *SQLiteStorage) SaveExperience(ctx context.Context, experience *core.Experience) error {
	if experience == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trajectories (user_id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET updated_at = excluded.updated_at
	`, experience.UserID, now, now); err != nil {
		return fmt.Errorf("upsert trajectory: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences WHERE user_id = ?`, experience.UserID).Scan(&seq); err != nil {
		return fmt.Errorf("count experiences: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM experiences WHERE id = ?`, experience.ID); err != nil {
		return fmt.Errorf("clear existing experience: %w", err)
	}
	if err := insertExperience(ctx, tx, experience, seq); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.cache.SaveExperience(ctx, experience)
}

func (s *SQLiteStorage) LoadExperience(ctx context.Context, userID, experienceID string) (*core.Experience, error) {
	return s.cache.LoadExperience(ctx, userID, experienceID)
}

func (s *SQLiteStorage) SaveFollowUp(ctx context.Context, userID, experienceID string, followUp core.FollowUp) error {
	var seq int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM follow_ups WHERE experience_id = ?`, experienceID).Scan(&seq); err != nil {
		return fmt.Errorf("count follow_ups: %w", err)
	}
	if err := insertFollowUp(ctx, s.db, experienceID, followUp, seq); err != nil {
		return err
	}
	return s.cache.SaveFollowUp(ctx, userID, experienceID, followUp)
}

func (s *SQLiteStorage) LogConversation(ctx context.Context, sessionID, userID, role, content, mode string, metrics map[string]any) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_logs (session_id, user_id, role, content, mode, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, userID, role, content, mode, string(metricsJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert conversation log: %w", err)
	}
	return s.cache.LogConversation(ctx, sessionID, userID, role, content, mode, metrics)
}

func (s *SQLiteStorage) GetConversationLogs(ctx context.Context, sessionID, userID string, limit int) ([]ConversationLog, error) {
	return s.cache.GetConversationLogs(ctx, sessionID, userID, limit)
}

func (s *SQLiteStorage) HealthCheck(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func insertExperience(ctx context.Context, tx *sql.Tx, e *core.Experience, seq int) error {
	dims, err := json.Marshal(e.QualityDimensions)
	if err != nil {
		return fmt.Errorf("marshal quality dimensions: %w", err)
	}
	events, err := json.Marshal(e.PropagationEvents)
	if err != nil {
		return fmt.Errorf("marshal propagation events: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO experiences (
			id, user_id, description, context, user_rating, timestamp,
			provisional_intention, intention_confidence, resonance_score,
			quality_score, quality_dimensions, propagated, propagation_events,
			matrix_position, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.UserID, e.Description, e.Context, e.UserRating, e.Timestamp.Format(time.RFC3339Nano),
		string(e.ProvisionalIntention), e.IntentionConfidence, e.ResonanceScore,
		e.QualityScore, string(dims), boolToInt(e.Propagated), string(events),
		e.MatrixPosition, seq,
	)
	if err != nil {
		return fmt.Errorf("insert experience: %w", err)
	}

	for i, f := range e.FollowUps {
		if err := insertFollowUp(ctx, tx, e.ID, f, i); err != nil {
			return err
		}
	}
	for i, h := range e.HorizonAssessments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO horizon_assessments (experience_id, horizon, score, note, seq)
			VALUES (?, ?, ?, ?, ?)
		`, e.ID, string(h.Horizon), h.Score, h.Note, i); err != nil {
			return fmt.Errorf("insert horizon assessment: %w", err)
		}
	}
	for i, v := range e.VectorSnapshots {
		if err := insertVectorSnapshot(ctx, tx, e.UserID, e.ID, v, i); err != nil {
			return fmt.Errorf("insert experience vector snapshot: %w", err)
		}
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFollowUp(ctx context.Context, e execer, experienceID string, f core.FollowUp, seq int) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO follow_ups (
			id, experience_id, timestamp, source, text, created_something,
			shared_or_taught, inspired_further_action, creation_magnitude,
			creation_description, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID, experienceID, f.Timestamp.Format(time.RFC3339Nano), string(f.Source), f.Text,
		boolToInt(f.CreatedSomething), boolToInt(f.SharedOrTaught), boolToInt(f.InspiredFurtherAction),
		f.CreationMagnitude, f.CreationDescription, seq,
	)
	if err != nil {
		return fmt.Errorf("insert follow_up: %w", err)
	}
	return nil
}

func insertVectorSnapshot(ctx context.Context, e execer, userID, experienceID string, v core.VectorSnapshot, seq int) error {
	var expID any
	if experienceID != "" {
		expID = experienceID
	}
	_, err := e.ExecContext(ctx, `
		INSERT INTO vector_snapshots (user_id, experience_id, horizon, direction, magnitude, confidence, timestamp, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, expID, string(v.Horizon), v.Direction, v.Magnitude, v.Confidence, v.Timestamp.Format(time.RFC3339Nano), seq)
	return err
}

// loadTrajectoryFromDB reconstructs a full Trajectory by querying every
// table, ordered by seq so append-only history replays in original order.
func (s *SQLiteStorage) loadTrajectoryFromDB(ctx context.Context, userID string) (*core.Trajectory, error) {
	traj := &core.Trajectory{UserID: userID}

	expRows, err := s.db.QueryContext(ctx, `
		SELECT id, description, context, user_rating, timestamp, provisional_intention,
		       intention_confidence, resonance_score, quality_score, quality_dimensions,
		       propagated, propagation_events, matrix_position
		FROM experiences WHERE user_id = ? ORDER BY seq
	`, userID)
	if err != nil {
		return nil, err
	}
	defer expRows.Close()

	for expRows.Next() {
		e := &core.Experience{UserID: userID}
		var ts, dims, events string
		var propagated int
		if err := expRows.Scan(&e.ID, &e.Description, &e.Context, &e.UserRating, &ts,
			&e.ProvisionalIntention, &e.IntentionConfidence, &e.ResonanceScore, &e.QualityScore,
			&dims, &propagated, &events, &e.MatrixPosition); err != nil {
			return nil, err
		}
		if e.Timestamp, err = core.ParseFlexibleTimestamp(ts); err != nil {
			return nil, fmt.Errorf("experience %s timestamp: %w", e.ID, err)
		}
		e.Propagated = propagated != 0
		if dims != "" {
			if err := json.Unmarshal([]byte(dims), &e.QualityDimensions); err != nil {
				return nil, fmt.Errorf("experience %s quality_dimensions: %w", e.ID, err)
			}
		}
		if events != "" {
			if err := json.Unmarshal([]byte(events), &e.PropagationEvents); err != nil {
				return nil, fmt.Errorf("experience %s propagation_events: %w", e.ID, err)
			}
		}
		if err := s.loadFollowUps(ctx, e); err != nil {
			return nil, err
		}
		if err := s.loadHorizonAssessments(ctx, e); err != nil {
			return nil, err
		}
		if err := s.loadVectorSnapshots(ctx, e.ID, &e.VectorSnapshots); err != nil {
			return nil, err
		}
		traj.Experiences = append(traj.Experiences, e)
	}
	if err := expRows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadTrajectoryVectorHistory(ctx, userID, &traj.VectorHistory); err != nil {
		return nil, err
	}
	if len(traj.VectorHistory) > 0 {
		traj.CurrentVector = traj.VectorHistory[len(traj.VectorHistory)-1]
	}
	return traj, nil
}

func (s *SQLiteStorage) loadFollowUps(ctx context.Context, e *core.Experience) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, source, text, created_something, shared_or_taught,
		       inspired_further_action, creation_magnitude, creation_description
		FROM follow_ups WHERE experience_id = ? ORDER BY seq
	`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var f core.FollowUp
		var ts string
		var created, shared, inspired int
		if err := rows.Scan(&f.ID, &ts, &f.Source, &f.Text, &created, &shared, &inspired,
			&f.CreationMagnitude, &f.CreationDescription); err != nil {
			return err
		}
		f.ExperienceID = e.ID
		if f.Timestamp, err = core.ParseFlexibleTimestamp(ts); err != nil {
			return fmt.Errorf("follow_up %s timestamp: %w", f.ID, err)
		}
		f.CreatedSomething, f.SharedOrTaught, f.InspiredFurtherAction = created != 0, shared != 0, inspired != 0
		e.FollowUps = append(e.FollowUps, f)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadHorizonAssessments(ctx context.Context, e *core.Experience) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT horizon, score, note FROM horizon_assessments WHERE experience_id = ? ORDER BY seq
	`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var h core.HorizonAssessment
		if err := rows.Scan(&h.Horizon, &h.Score, &h.Note); err != nil {
			return err
		}
		e.HorizonAssessments = append(e.HorizonAssessments, h)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadVectorSnapshots(ctx context.Context, experienceID string, dest *[]core.VectorSnapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT horizon, direction, magnitude, confidence, timestamp
		FROM vector_snapshots WHERE experience_id = ? ORDER BY seq
	`, experienceID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v core.VectorSnapshot
		var ts string
		if err := rows.Scan(&v.Horizon, &v.Direction, &v.Magnitude, &v.Confidence, &ts); err != nil {
			return err
		}
		if v.Timestamp, err = core.ParseFlexibleTimestamp(ts); err != nil {
			return err
		}
		*dest = append(*dest, v)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadTrajectoryVectorHistory(ctx context.Context, userID string, dest *[]core.VectorSnapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT horizon, direction, magnitude, confidence, timestamp
		FROM vector_snapshots WHERE user_id = ? AND experience_id IS NULL ORDER BY seq
	`, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v core.VectorSnapshot
		var ts string
		if err := rows.Scan(&v.Horizon, &v.Direction, &v.Magnitude, &v.Confidence, &ts); err != nil {
			return err
		}
		if v.Timestamp, err = core.ParseFlexibleTimestamp(ts); err != nil {
			return err
		}
		*dest = append(*dest, v)
	}
	return rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
