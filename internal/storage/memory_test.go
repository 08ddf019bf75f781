package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chusla/improvement-axiom/internal/core"
)

func TestMemoryStorageLoadMissingTrajectoryReturnsNil(t *testing.T) {
	m := NewMemoryStorage()
	traj, err := m.LoadTrajectory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, traj)
}

func TestMemoryStorageSaveAndLoadRoundTrips(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	traj := &core.Trajectory{UserID: "u1", CreationRate: 0.4}

	require.NoError(t, m.SaveTrajectory(ctx, traj))
	loaded, err := m.LoadTrajectory(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 0.4, loaded.CreationRate)
}

func TestMemoryStorageLoadReturnsDeepCopyNotAliased(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, m.SaveTrajectory(ctx, &core.Trajectory{UserID: "u1", CreationRate: 0.1}))

	loaded, err := m.LoadTrajectory(ctx, "u1")
	require.NoError(t, err)
	loaded.CreationRate = 99

	reloaded, err := m.LoadTrajectory(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.1, reloaded.CreationRate)
}

func TestMemoryStorageListUserIDs(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, m.SaveTrajectory(ctx, &core.Trajectory{UserID: "u1"}))
	require.NoError(t, m.SaveTrajectory(ctx, &core.Trajectory{UserID: "u2"}))

	ids, err := m.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}

func TestMemoryStorageSaveExperienceCreatesTrajectoryIfMissing(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	exp := &core.Experience{ID: "e1", UserID: "u1", Description: "desc"}

	require.NoError(t, m.SaveExperience(ctx, exp))
	loaded, err := m.LoadExperience(ctx, "u1", "e1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "desc", loaded.Description)
}

func TestMemoryStorageSaveExperienceUpdatesExisting(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, m.SaveExperience(ctx, &core.Experience{ID: "e1", UserID: "u1", Description: "first"}))
	require.NoError(t, m.SaveExperience(ctx, &core.Experience{ID: "e1", UserID: "u1", Description: "second"}))

	loaded, err := m.LoadExperience(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Description)

	traj, err := m.LoadTrajectory(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, traj.Experiences, 1)
}

func TestMemoryStorageSaveFollowUpAppendsToExperience(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, m.SaveExperience(ctx, &core.Experience{ID: "e1", UserID: "u1"}))
	require.NoError(t, m.SaveFollowUp(ctx, "u1", "e1", core.FollowUp{CreatedSomething: true}))

	loaded, err := m.LoadExperience(ctx, "u1", "e1")
	require.NoError(t, err)
	require.Len(t, loaded.FollowUps, 1)
	assert.True(t, loaded.FollowUps[0].CreatedSomething)
}

func TestMemoryStorageConversationLogFilterAndLimit(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, m.LogConversation(ctx, "s1", "u1", "user", "hi", "chat", nil))
	require.NoError(t, m.LogConversation(ctx, "s1", "u1", "assistant", "hello", "chat", nil))
	require.NoError(t, m.LogConversation(ctx, "s2", "u2", "user", "other", "chat", nil))

	logs, err := m.GetConversationLogs(ctx, "s1", "u1", 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	limited, err := m.GetConversationLogs(ctx, "s1", "u1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "hello", limited[0].Content)
}

func TestMemoryStorageHealthCheckAlwaysTrue(t *testing.T) {
	m := NewMemoryStorage()
	assert.True(t, m.HealthCheck(context.Background()))
}
