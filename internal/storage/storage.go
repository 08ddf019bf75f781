package storage

import (
	"context"

	"github.com/chusla/improvement-axiom/internal/core"
)

// ConversationLog is one row logged by LogConversation and returned by
// GetConversationLogs.
type ConversationLog struct {
	ID        int64
	SessionID string
	UserID    string
	Role      string
	Content   string
	Mode      string
	Metrics   map[string]any
	CreatedAt string
}

// TrajectoryRepository loads and saves whole per-user trajectories.
type TrajectoryRepository interface {
	LoadTrajectory(ctx context.Context, userID string) (*core.Trajectory, error)
	SaveTrajectory(ctx context.Context, trajectory *core.Trajectory) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// ExperienceRepository loads and saves individual experiences and follow-ups.
type ExperienceRepository interface {
	SaveExperience(ctx context.Context, experience *core.Experience) error
	LoadExperience(ctx context.Context, userID, experienceID string) (*core.Experience, error)
	SaveFollowUp(ctx context.Context, userID, experienceID string, followUp core.FollowUp) error
}

// ConversationRepository records and replays conversational turns, for
// callers layering a chat surface over the engine.
type ConversationRepository interface {
	LogConversation(ctx context.Context, sessionID, userID, role, content, mode string, metrics map[string]any) error
	GetConversationLogs(ctx context.Context, sessionID, userID string, limit int) ([]ConversationLog, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// Storage is the full persistence contract the orchestrator depends on,
// composed from narrower sub-interfaces so concrete backends (and test
// doubles) can satisfy — and callers can depend on — only the slice they
// need.
type Storage interface {
	TrajectoryRepository
	ExperienceRepository
	ConversationRepository
	HealthChecker
}
