package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chusla/improvement-axiom/internal/core"
)

func TestAssessBoundedAndColdStart(t *testing.T) {
	exp := &core.Experience{UserRating: 0.8}
	score, dims := Assess(exp, nil)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	for name, v := range dims {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestAuthenticitySpikeCrashScoresLowerThanGenuineEngagement(t *testing.T) {
	now := time.Now().UTC()
	spikeCrash := &core.Experience{
		UserRating: 0.9,
		Timestamp:  now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(time.Hour), CreatedSomething: false, SharedOrTaught: false, InspiredFurtherAction: false},
		},
	}
	genuine := &core.Experience{
		UserRating: 0.9,
		Timestamp:  now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(time.Hour), CreatedSomething: true, SharedOrTaught: true},
		},
	}
	assert.Less(t, authenticity(spikeCrash, nil), authenticity(genuine, nil))
}

func TestAuthenticityQuietDoerPattern(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{
		UserRating: 0.2,
		Timestamp:  now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(time.Hour), CreatedSomething: true, CreationMagnitude: 1.0},
		},
	}
	score := authenticity(exp, nil)
	assert.Greater(t, score, 0.5)
}

func TestSignalDepthRewardsFastBroadFollowUp(t *testing.T) {
	now := time.Now().UTC()
	fast := &core.Experience{
		Timestamp: now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(time.Hour), CreatedSomething: true, SharedOrTaught: true, InspiredFurtherAction: true},
		},
	}
	slow := &core.Experience{
		Timestamp: now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(45 * 24 * time.Hour), CreatedSomething: true, SharedOrTaught: true, InspiredFurtherAction: true},
		},
	}
	assert.Greater(t, signalDepth(fast), signalDepth(slow))
}

func TestGrowthEnablingZeroWithoutTrajectoryContext(t *testing.T) {
	exp := &core.Experience{ID: "e1"}
	assert.Zero(t, growthEnabling(exp, nil))
	assert.Zero(t, growthEnabling(exp, &core.Trajectory{Experiences: []*core.Experience{exp}}))
}
