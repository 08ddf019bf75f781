package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chusla/improvement-axiom/internal/core"
)

func TestEvaluateReturnsFiveHorizonsImmediateAlwaysScored(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{UserRating: 0.7, Timestamp: now}
	out := Evaluate(exp, nil)
	require.Len(t, out, 5)
	require.NotNil(t, out[0].Score)
	assert.Equal(t, 0.7, *out[0].Score)
	assert.Equal(t, core.HorizonImmediate, out[0].Horizon)
}

func TestEvaluateShortTermNoFollowUpsYieldsNote(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{Timestamp: now}
	out := Evaluate(exp, nil)
	short := out[1]
	assert.Nil(t, short.Score)
	assert.NotEmpty(t, short.Note)
}

func TestEvaluateShortTermScoresWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{
		Timestamp: now,
		FollowUps: []core.FollowUp{
			{Timestamp: now.Add(24 * time.Hour), CreatedSomething: true, SharedOrTaught: true, InspiredFurtherAction: true},
		},
	}
	out := Evaluate(exp, nil)
	short := out[1]
	require.NotNil(t, short.Score)
	assert.InDelta(t, 1.0, *short.Score, 1e-9)
}

func TestEvaluateLongTermNeedsEvidenceOrHistory(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{Timestamp: now}
	out := Evaluate(exp, nil)
	long := out[3]
	assert.Nil(t, long.Score)
	assert.NotEmpty(t, long.Note)
}

func TestEvaluateLongTermUsesTrajectoryWhenEnoughHistory(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{Timestamp: now}
	exps := make([]*core.Experience, 5)
	for i := range exps {
		exps[i] = &core.Experience{}
	}
	traj := &core.Trajectory{Experiences: exps, CompoundingDirection: 0.4, CreationRate: 0.6}
	out := Evaluate(exp, traj)
	long := out[3]
	require.NotNil(t, long.Score)
	assert.InDelta(t, 0.5*core.Clamp((0.4+1)/2, 0, 1)+0.5*0.6, *long.Score, 1e-9)
}

func TestEvaluateGenerationalNeedsTwentyExperiences(t *testing.T) {
	now := time.Now().UTC()
	exp := &core.Experience{Timestamp: now}
	traj := &core.Trajectory{Experiences: []*core.Experience{{}, {}}}
	out := Evaluate(exp, traj)
	gen := out[4]
	assert.Nil(t, gen.Score)
}

func TestComputeArcTrendInsufficientDataWithFewerThanTwo(t *testing.T) {
	score := 0.5
	assessments := []core.HorizonAssessment{{Horizon: core.HorizonImmediate, Score: &score}}
	assert.Equal(t, core.ArcInsufficientData, ComputeArcTrend(assessments))
}

func TestComputeArcTrendImprovingWhenScoresRise(t *testing.T) {
	low, high := 0.2, 0.8
	assessments := []core.HorizonAssessment{
		{Horizon: core.HorizonMediumTerm, Score: &high},
		{Horizon: core.HorizonImmediate, Score: &low},
	}
	assert.Equal(t, core.ArcImproving, ComputeArcTrend(assessments))
}

func TestComputeArcTrendDecliningWhenScoresFall(t *testing.T) {
	low, high := 0.2, 0.8
	assessments := []core.HorizonAssessment{
		{Horizon: core.HorizonImmediate, Score: &high},
		{Horizon: core.HorizonMediumTerm, Score: &low},
	}
	assert.Equal(t, core.ArcDeclining, ComputeArcTrend(assessments))
}

func TestComputeArcTrendStableWithinNoiseBand(t *testing.T) {
	a, b := 0.5, 0.52
	assessments := []core.HorizonAssessment{
		{Horizon: core.HorizonImmediate, Score: &a},
		{Horizon: core.HorizonShortTerm, Score: &b},
	}
	assert.Equal(t, core.ArcStable, ComputeArcTrend(assessments))
}

func TestWeightedScoreNilWhenNonePresent(t *testing.T) {
	assessments := []core.HorizonAssessment{{Horizon: core.HorizonImmediate}}
	assert.Nil(t, WeightedScore(assessments))
}

func TestWeightedScoreNormalizesOverPresentHorizons(t *testing.T) {
	score := 1.0
	assessments := []core.HorizonAssessment{
		{Horizon: core.HorizonImmediate, Score: &score},
	}
	result := WeightedScore(assessments)
	require.NotNil(t, result)
	assert.InDelta(t, 1.0, *result, 1e-9)
}
