package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
)

// MemoryStorage is the in-memory Storage implementation: all data lost on
// restart. Deep-copies on both load and save so callers can freely mutate
// what they're handed without aliasing storage's own state. A failed save
// leaves the stored copy as it was; nothing is rolled back, so saves that
// succeeded earlier in the same orchestrator call stay in place.
type MemoryStorage struct {
	mu            sync.RWMutex
	trajectories  map[string]*core.Trajectory
	conversations []ConversationLog
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		trajectories: make(map[string]*core.Trajectory),
	}
}

func (m *MemoryStorage) LoadTrajectory(ctx context.Context, userID string) (*core.Trajectory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trajectories[userID]
	if !ok {
		return nil, nil
	}
	return copyTrajectory(t), nil
}

func (m *MemoryStorage) SaveTrajectory(ctx context.Context, trajectory *core.Trajectory) error {
	if trajectory == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trajectories[trajectory.UserID] = copyTrajectory(trajectory)
	return nil
}

func (m *MemoryStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.trajectories))
	for id := range m.trajectories {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryStorage) SaveExperience(ctx context.Context, experience *core.Experience) error {
	if experience == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	traj, ok := m.trajectories[experience.UserID]
	if !ok {
		traj = &core.Trajectory{UserID: experience.UserID}
		m.trajectories[experience.UserID] = traj
	}

	cp := copyExperience(experience)
	for i, e := range traj.Experiences {
		if e.ID == experience.ID {
			traj.Experiences[i] = cp
			return nil
		}
	}
	traj.Experiences = append(traj.Experiences, cp)
	return nil
}

func (m *MemoryStorage) LoadExperience(ctx context.Context, userID, experienceID string) (*core.Experience, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	traj, ok := m.trajectories[userID]
	if !ok {
		return nil, nil
	}
	for _, e := range traj.Experiences {
		if e.ID == experienceID {
			return copyExperience(e), nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) SaveFollowUp(ctx context.Context, userID, experienceID string, followUp core.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	traj, ok := m.trajectories[userID]
	if !ok {
		return nil
	}
	for _, e := range traj.Experiences {
		if e.ID == experienceID {
			e.FollowUps = append(e.FollowUps, copyFollowUp(followUp))
			return nil
		}
	}
	return nil
}

func (m *MemoryStorage) LogConversation(ctx context.Context, sessionID, userID, role, content, mode string, metrics map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = append(m.conversations, ConversationLog{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Mode:      mode,
		Metrics:   metrics,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	return nil
}

func (m *MemoryStorage) GetConversationLogs(ctx context.Context, sessionID, userID string, limit int) ([]ConversationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []ConversationLog
	for _, l := range m.conversations {
		if sessionID != "" && l.SessionID != sessionID {
			continue
		}
		if userID != "" && l.UserID != userID {
			continue
		}
		matched = append(matched, l)
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func (m *MemoryStorage) HealthCheck(ctx context.Context) bool {
	return true
}
