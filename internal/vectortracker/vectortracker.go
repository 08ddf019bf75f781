// Package vectortracker owns the per-user Trajectory and computes the
// per-experience and aggregate vectors that drive every downstream scorer.
package vectortracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/storage"
)

// Tracker mutates a user's Trajectory through Storage; it owns no other
// state of its own.
type Tracker struct {
	store storage.Storage
}

// New returns a Tracker backed by store.
func New(store storage.Storage) *Tracker {
	return &Tracker{store: store}
}

// RecordExperience creates a new Experience, appends it to the user's
// trajectory (creating the trajectory if this is the user's first), writes
// its provisional per-experience vector, and persists.
func (t *Tracker) RecordExperience(ctx context.Context, userID, description, context_, ts string, rating float64) (*core.Experience, *core.Trajectory, error) {
	timestamp := time.Now().UTC()
	if ts != "" {
		parsed, err := core.ParseFlexibleTimestamp(ts)
		if err != nil {
			return nil, nil, fmt.Errorf("vectortracker: invalid timestamp: %w", err)
		}
		timestamp = parsed
	}

	exp := &core.Experience{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Description:          description,
		Context:              context_,
		UserRating:           core.Clamp(rating, 0, 1),
		Timestamp:            timestamp,
		ProvisionalIntention: core.PendingIntent,
		QualityDimensions:    make(map[string]float64, 5),
	}

	traj, err := t.store.LoadTrajectory(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("vectortracker: load trajectory: %w", err)
	}
	if traj == nil {
		traj = &core.Trajectory{UserID: userID}
	}

	snap := perExperienceVector(exp, nil, traj)
	exp.VectorSnapshots = append(exp.VectorSnapshots, snap)
	traj.Experiences = append(traj.Experiences, exp)

	agg := aggregateVector(traj)
	traj.CurrentVector = agg
	traj.VectorHistory = append(traj.VectorHistory, agg)
	traj.CompoundingDirection = compoundingDirection(traj)
	traj.CreationRate = creationRate(traj)

	if err := t.store.SaveTrajectory(ctx, traj); err != nil {
		return nil, nil, fmt.Errorf("vectortracker: save trajectory: %w", err)
	}
	return exp, traj, nil
}

// RecordFollowUp appends followUp to the named experience, recomputes that
// experience's per-experience vector and the trajectory's aggregate, and
// persists. Returns (nil, nil, nil) when the experience does not exist,
// matching the source's "no assessment" semantics for unknown experiences.
func (t *Tracker) RecordFollowUp(ctx context.Context, userID, experienceID string, followUp core.FollowUp) (*core.Experience, *core.Trajectory, error) {
	traj, err := t.store.LoadTrajectory(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("vectortracker: load trajectory: %w", err)
	}
	exp := traj.FindExperience(experienceID)
	if exp == nil {
		return nil, nil, nil
	}

	if followUp.ID == "" {
		followUp.ID = uuid.NewString()
	}
	followUp.ExperienceID = experienceID
	exp.FollowUps = append(exp.FollowUps, followUp)

	snap := perExperienceVector(exp, exp.FollowUps, traj)
	exp.VectorSnapshots = append(exp.VectorSnapshots, snap)

	agg := aggregateVector(traj)
	traj.CurrentVector = agg
	traj.VectorHistory = append(traj.VectorHistory, agg)
	traj.CompoundingDirection = compoundingDirection(traj)
	traj.CreationRate = creationRate(traj)

	if err := t.store.SaveTrajectory(ctx, traj); err != nil {
		return nil, nil, fmt.Errorf("vectortracker: save trajectory: %w", err)
	}
	return exp, traj, nil
}

// GetTrajectory returns the user's trajectory, or nil if they have none yet.
func (t *Tracker) GetTrajectory(ctx context.Context, userID string) (*core.Trajectory, error) {
	return t.store.LoadTrajectory(ctx, userID)
}

// ComputeVector recomputes the aggregate vector for userID without mutating
// storage — used by callers that only need a read.
func (t *Tracker) ComputeVector(ctx context.Context, userID string) (core.VectorSnapshot, error) {
	traj, err := t.store.LoadTrajectory(ctx, userID)
	if err != nil {
		return core.VectorSnapshot{}, err
	}
	return aggregateVector(traj), nil
}

// ComputeCompoundingRate returns the trajectory's compounding direction.
func (t *Tracker) ComputeCompoundingRate(ctx context.Context, userID string) (float64, error) {
	traj, err := t.store.LoadTrajectory(ctx, userID)
	if err != nil {
		return 0, err
	}
	return compoundingDirection(traj), nil
}

// creationSignal is the per-follow-up creation contribution shared by
// VectorTracker and IntentionClassifier (the multiplicative-magnitude
// contract the Open Questions section settled on).
func creationSignal(f core.FollowUp) float64 {
	m := 0.0
	if f.CreatedSomething {
		m = f.EffectiveMagnitude()
	}
	shared := 0.0
	if f.SharedOrTaught {
		shared = 1.0
	}
	inspired := 0.0
	if f.InspiredFurtherAction {
		inspired = 1.0
	}
	return 0.40*m + 0.25*shared + 0.20*inspired
}

// perExperienceVector recomputes one experience's own VectorSnapshot from
// its follow-ups.
func perExperienceVector(exp *core.Experience, followUps []core.FollowUp, traj *core.Trajectory) core.VectorSnapshot {
	now := time.Now().UTC()
	if len(followUps) == 0 {
		if len(exp.VectorSnapshots) > 0 {
			return exp.VectorSnapshots[len(exp.VectorSnapshots)-1]
		}
		if traj != nil && traj.HasHistory() {
			return core.VectorSnapshot{
				Timestamp:  now,
				Direction:  traj.CurrentVector.Direction * 0.3,
				Magnitude:  traj.CurrentVector.Magnitude * 0.3,
				Confidence: math.Min(traj.CurrentVector.Confidence, 0.25),
				Horizon:    core.HorizonImmediate,
			}
		}
		return core.VectorSnapshot{Timestamp: now, Direction: 0, Magnitude: 0.1, Confidence: 0.05, Horizon: core.HorizonImmediate}
	}

	var sum float64
	for _, f := range followUps {
		sum += creationSignal(f)
	}
	avgCreation := sum / float64(len(followUps))

	direction := core.Clamp(2*avgCreation-0.2+(exp.UserRating-0.5)*0.10, -1, 1)
	magnitude := math.Min(avgCreation+0.2, 1)
	confidence := math.Min(0.15+0.15*float64(len(followUps)), 0.95)

	return core.VectorSnapshot{
		Timestamp:  now,
		Direction:  direction,
		Magnitude:  magnitude,
		Confidence: confidence,
		Horizon:    core.HorizonImmediate,
	}
}

// aggregateVector recency-weights each experience's latest per-experience
// snapshot, further weighted by its own confidence, per §4.1.
func aggregateVector(traj *core.Trajectory) core.VectorSnapshot {
	now := time.Now().UTC()
	if traj == nil || len(traj.Experiences) == 0 {
		return core.VectorSnapshot{Timestamp: now, Confidence: 0}
	}

	var weightedDirection, weightedMagnitude, weightedConfidence, totalWeight float64
	for _, e := range traj.Experiences {
		snap, ok := e.CurrentVector()
		if !ok {
			continue
		}
		ageDays := now.Sub(e.Timestamp).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		recency := math.Exp(-math.Ln2 * ageDays / 90)
		weight := recency * snap.Confidence
		weightedDirection += weight * snap.Direction
		weightedMagnitude += weight * snap.Magnitude
		weightedConfidence += weight * snap.Confidence
		totalWeight += weight
	}

	if totalWeight < 1e-9 {
		return core.VectorSnapshot{Timestamp: now, Confidence: 0}
	}
	return core.VectorSnapshot{
		Timestamp:  now,
		Direction:  core.Clamp(weightedDirection/totalWeight, -1, 1),
		Magnitude:  core.Clamp(weightedMagnitude/totalWeight, 0, 1),
		Confidence: core.Clamp(weightedConfidence/totalWeight, 0, 1),
		Horizon:    core.HorizonImmediate,
	}
}

// compoundingDirection is the first finite difference of the last two
// aggregate vector directions.
func compoundingDirection(traj *core.Trajectory) float64 {
	if traj == nil || len(traj.VectorHistory) < 2 {
		return 0
	}
	n := len(traj.VectorHistory)
	return traj.VectorHistory[n-1].Direction - traj.VectorHistory[n-2].Direction
}

// creationRate is the fraction of a trajectory's experiences that have propagated.
func creationRate(traj *core.Trajectory) float64 {
	if traj == nil || len(traj.Experiences) == 0 {
		return 0
	}
	var propagated int
	for _, e := range traj.Experiences {
		if e.Propagated {
			propagated++
		}
	}
	return float64(propagated) / float64(len(traj.Experiences))
}

// ClassifySignal maps a direction to a discrete IntentionSignal per the
// shared threshold contract (VectorTracker and IntentionClassifier agree).
func ClassifySignal(direction float64) core.IntentionSignal {
	switch {
	case direction > 0.2:
		return core.CreativeIntent
	case direction < -0.2:
		return core.ConsumptiveIntent
	default:
		return core.MixedIntent
	}
}

// CreationSignal exposes creationSignal to other packages (IntentionClassifier,
// OuroborosAnchor) that must use the identical multiplicative-magnitude formula.
func CreationSignal(f core.FollowUp) float64 {
	return creationSignal(f)
}
