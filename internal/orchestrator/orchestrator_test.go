package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/metrics"
	"github.com/chusla/improvement-axiom/internal/storage"
)

func newTestOrchestrator() *Orchestrator {
	return New(storage.NewMemoryStorage(), nil, nil, nil, zerolog.Nop())
}

func TestProcessExperienceValidatesInputs(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.ProcessExperience(ctx, "", "desc", 0.5, "")
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = o.ProcessExperience(ctx, "u1", "", 0.5, "")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = o.ProcessExperience(ctx, "u1", "desc", 1.5, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestProcessExperienceProducesFullAssessment(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	assessment, err := o.ProcessExperience(ctx, "u1", "Played Minecraft all weekend", 0.8, "first time trying it")
	require.NoError(t, err)
	require.NotNil(t, assessment)

	assert.NotEmpty(t, assessment.Experience.ID)
	assert.Equal(t, "u1", assessment.Experience.UserID)
	assert.GreaterOrEqual(t, assessment.Experience.QualityScore, 0.0)
	assert.LessOrEqual(t, assessment.Experience.QualityScore, 1.0)
	assert.NotEmpty(t, assessment.Experience.MatrixPosition)
	assert.Equal(t, core.ArcInsufficientData, assessment.ArcTrend)
	assert.NotEmpty(t, assessment.Recommendations)
	assert.Len(t, assessment.PendingQuestions, 3)
	assert.NotNil(t, assessment.TrajectoryEvidence)
	assert.Contains(t, assessment.DegradationNotes, "web access unavailable: trajectory evidence omitted")
}

func TestProcessExperienceRecordsOperationalMetrics(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	assessment, err := o.ProcessExperience(ctx, "u1", "Played Minecraft all weekend", 0.8, "first time trying it")
	require.NoError(t, err)

	assert.Equal(t, 3, o.Metrics().OperationCount("process_experience"))
	avg, ok := o.Metrics().AverageByType(metrics.MetricQualityScore)
	assert.True(t, ok)
	assert.Equal(t, assessment.Experience.QualityScore, avg)
}

func TestProcessExperiencePersistsTrajectoryBetweenCalls(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.ProcessExperience(ctx, "u1", "first experience", 0.5, "")
	require.NoError(t, err)
	assessment, err := o.ProcessExperience(ctx, "u1", "second experience", 0.5, "")
	require.NoError(t, err)

	assert.Len(t, assessment.Trajectory.Experiences, 2)
}

func TestProcessFollowUpUnknownExperienceReturnsNilAssessmentNoError(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.ProcessExperience(ctx, "u1", "an experience", 0.5, "")
	require.NoError(t, err)

	assessment, err := o.ProcessFollowUp(ctx, "u1", "does-not-exist", core.FollowUp{})
	require.NoError(t, err)
	assert.Nil(t, assessment)
}

func TestProcessFollowUpCreatedSomethingMarksPropagated(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	first, err := o.ProcessExperience(ctx, "u1", "Played Minecraft all weekend", 0.8, "")
	require.NoError(t, err)
	expID := first.Experience.ID

	assessment, err := o.ProcessFollowUp(ctx, "u1", expID, core.FollowUp{
		ID:                  "f1",
		CreatedSomething:    true,
		CreationMagnitude:   0.8,
		CreationDescription: "built a custom world",
	})
	require.NoError(t, err)
	require.NotNil(t, assessment)
	assert.True(t, assessment.Experience.Propagated)
	assert.Contains(t, assessment.Experience.PropagationEvents, "built a custom world")
	assert.Empty(t, assessment.PendingQuestions, "follow-ups never generate new pending questions")
}

func TestSubmitArtifactMissingExperienceReturnsInaccessibleNoError(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.ProcessExperience(ctx, "u1", "an experience", 0.5, "")
	require.NoError(t, err)

	result, err := o.SubmitArtifact(ctx, "u1", "does-not-exist", "https://example.com", "claim", "web")
	require.NoError(t, err)
	assert.Equal(t, core.ArtifactInaccessible, result.Status)
}

func TestSubmitArtifactDegradesWithoutWebAccess(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	first, err := o.ProcessExperience(ctx, "u1", "an experience", 0.5, "")
	require.NoError(t, err)

	result, err := o.SubmitArtifact(ctx, "u1", first.Experience.ID, "https://example.com/proof", "I built this", "web")
	require.NoError(t, err)
	assert.Equal(t, core.ArtifactInaccessible, result.Status)
}

func TestSubmitArtifactEmptyUserIDErrors(t *testing.T) {
	o := newTestOrchestrator()
	_, err := o.SubmitArtifact(context.Background(), "", "e1", "https://example.com", "", "")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestGetDueQuestionsFiltersByAskAfter(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.ProcessExperience(ctx, "u1", "an experience", 0.5, "")
	require.NoError(t, err)

	notYetDue := o.GetDueQuestions(ctx, time.Now().UTC())
	assert.Empty(t, notYetDue)

	farFuture := time.Now().UTC().Add(200 * 24 * time.Hour)
	due := o.GetDueQuestions(ctx, farFuture)
	assert.Len(t, due, 3)
}

func TestPredictResonanceWithoutIndexReturnsZero(t *testing.T) {
	o := newTestOrchestrator()
	score, basis, err := o.PredictResonance(context.Background(), "u1", "candidate")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Nil(t, basis)
}

func TestProcessExperienceIsolatesDifferentUsers(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	a, err := o.ProcessExperience(ctx, "alice", "Built a birdhouse", 0.9, "")
	require.NoError(t, err)
	b, err := o.ProcessExperience(ctx, "bob", "Watched reruns", 0.3, "")
	require.NoError(t, err)

	assert.Len(t, a.Trajectory.Experiences, 1)
	assert.Len(t, b.Trajectory.Experiences, 1)
	assert.NotEqual(t, a.Trajectory.UserID, b.Trajectory.UserID)
}
