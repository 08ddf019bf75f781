package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampBoundsValue(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestHorizonDurationMatchesFixedWindows(t *testing.T) {
	assert.Equal(t, time.Duration(0), HorizonDuration(HorizonImmediate))
	assert.Equal(t, 24*time.Hour, HorizonDuration(HorizonShortTerm))
	assert.Equal(t, 14*24*time.Hour, HorizonDuration(HorizonMediumTerm))
	assert.Equal(t, 90*24*time.Hour, HorizonDuration(HorizonLongTerm))
	assert.Equal(t, 365*24*time.Hour, HorizonDuration(HorizonGenerational))
}

func TestHorizonOrderIsMonotonic(t *testing.T) {
	assert.Less(t, HorizonOrder(HorizonImmediate), HorizonOrder(HorizonShortTerm))
	assert.Less(t, HorizonOrder(HorizonShortTerm), HorizonOrder(HorizonMediumTerm))
	assert.Less(t, HorizonOrder(HorizonMediumTerm), HorizonOrder(HorizonLongTerm))
	assert.Less(t, HorizonOrder(HorizonLongTerm), HorizonOrder(HorizonGenerational))
}

func TestFollowUpEffectiveMagnitudeBackwardCompatibility(t *testing.T) {
	f := FollowUp{CreatedSomething: true, CreationMagnitude: 0}
	assert.Equal(t, 1.0, f.EffectiveMagnitude())

	f2 := FollowUp{CreatedSomething: true, CreationMagnitude: 0.4}
	assert.Equal(t, 0.4, f2.EffectiveMagnitude())

	f3 := FollowUp{CreatedSomething: false}
	assert.Zero(t, f3.EffectiveMagnitude())
}

func TestExperienceCurrentVectorEmpty(t *testing.T) {
	e := &Experience{}
	_, ok := e.CurrentVector()
	assert.False(t, ok)
}

func TestExperienceCurrentVectorReturnsLatest(t *testing.T) {
	e := &Experience{VectorSnapshots: []VectorSnapshot{
		{Direction: 0.1}, {Direction: 0.9},
	}}
	snap, ok := e.CurrentVector()
	require.True(t, ok)
	assert.Equal(t, 0.9, snap.Direction)
}

func TestTrajectoryHasHistoryAndFindExperience(t *testing.T) {
	var nilTraj *Trajectory
	assert.False(t, nilTraj.HasHistory())
	assert.Nil(t, nilTraj.FindExperience("e1"))
	assert.Zero(t, nilTraj.ExperienceCount())

	traj := &Trajectory{
		Experiences:   []*Experience{{ID: "e1"}},
		VectorHistory: []VectorSnapshot{{Direction: 0.2}},
	}
	assert.True(t, traj.HasHistory())
	assert.Equal(t, 1, traj.ExperienceCount())
	found := traj.FindExperience("e1")
	require.NotNil(t, found)
	assert.Nil(t, traj.FindExperience("missing"))
}

func TestParseFlexibleTimestampVariousPrecisions(t *testing.T) {
	cases := []string{
		"2025-06-01T10:00:00Z",
		"2025-06-01T10:00:00.123Z",
		"2025-06-01T10:00:00.123456789Z",
		"2025-06-01T10:00:00",
		"2025-06-01 10:00:00",
		"2025-06-01",
	}
	for _, c := range cases {
		ts, err := ParseFlexibleTimestamp(c)
		require.NoError(t, err, c)
		assert.Equal(t, 2025, ts.Year(), c)
	}
}

func TestParseFlexibleTimestampRejectsEmptyAndGarbage(t *testing.T) {
	_, err := ParseFlexibleTimestamp("")
	assert.Error(t, err)

	_, err = ParseFlexibleTimestamp("not a timestamp")
	assert.Error(t, err)
}
