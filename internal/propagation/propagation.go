// Package propagation tracks creation events — the observable fact that an
// experience led to downstream creation, sharing, or teaching — and derives
// a propagation rate plus an authenticity adjustment to resonance.
package propagation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/lineage"
)

// CreationEvent is one recorded instance of an experience leading to
// something made, shared, or taught.
type CreationEvent struct {
	UserID                string
	ExperienceID          string
	FollowUpID            string
	Description           string
	Timestamp             time.Time
	InspiredByExperienceID string
}

// Replica mirrors creation events into a supplemental property graph (e.g.
// neo4jstore.Client). A Replica outage must never block or fail event
// recording — callers ignore its errors.
type Replica interface {
	UpsertExperience(ctx context.Context, userID, experienceID string, timestamp time.Time) error
	RecordCreationEvent(ctx context.Context, userID, sourceExperienceID, creationID, description string, timestamp time.Time, ledToExperienceID string) error
}

// Tracker stores creation events keyed by user and feeds the lineage graph
// whenever an event names the experience that inspired it.
type Tracker struct {
	mu      sync.Mutex
	events  map[string][]CreationEvent
	lineage *lineage.Tracker
	replica Replica
}

// New constructs a Tracker. lineageTracker and replica may both be nil, in
// which case lineage recording and graph mirroring are skipped.
func New(lineageTracker *lineage.Tracker, replica Replica) *Tracker {
	return &Tracker{
		events:  make(map[string][]CreationEvent),
		lineage: lineageTracker,
		replica: replica,
	}
}

// RecordCreationEvent is called by the orchestrator whenever a follow-up
// with created_something=true arrives, or whenever an artifact verifies.
// If the event names the experience that inspired it, it is also recorded
// as an edge in the lineage graph — purely explanatory, never a scoring
// input. When a Replica is configured, the same edge is mirrored into its
// property graph; mirroring errors are swallowed, matching the in-memory
// lineage graph's authoritative status over the replica.
func (t *Tracker) RecordCreationEvent(ctx context.Context, event CreationEvent) {
	t.mu.Lock()
	t.events[event.UserID] = append(t.events[event.UserID], event)
	t.mu.Unlock()

	if t.lineage != nil && event.InspiredByExperienceID != "" {
		t.lineage.RecordLink(event.UserID, event.InspiredByExperienceID, event.FollowUpID, event.ExperienceID)
	}

	if t.replica != nil {
		if err := t.replica.UpsertExperience(ctx, event.UserID, event.ExperienceID, event.Timestamp); err == nil {
			_ = t.replica.RecordCreationEvent(ctx, event.UserID, event.InspiredByExperienceID, event.FollowUpID, event.Description, event.Timestamp, "")
		}
	}
}

// EventsFor returns the creation events recorded for a user, in record order.
func (t *Tracker) EventsFor(userID string) []CreationEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CreationEvent, len(t.events[userID]))
	copy(out, t.events[userID])
	return out
}

// ComputePropagationRate is the fraction of experiences with
// (resonance > 0.6 OR rating > 0.6) that are propagated.
func ComputePropagationRate(trajectory *core.Trajectory) float64 {
	if trajectory == nil || len(trajectory.Experiences) == 0 {
		return 0
	}
	var eligible, propagated int
	for _, e := range trajectory.Experiences {
		if e.ResonanceScore > 0.6 || e.UserRating > 0.6 {
			eligible++
			if e.Propagated {
				propagated++
			}
		}
	}
	if eligible == 0 {
		return 0
	}
	return float64(propagated) / float64(eligible)
}

// ValidateResonanceAuthenticity adjusts a resonance score against the
// user's propagation rate, only once at least 3 experiences exist.
func ValidateResonanceAuthenticity(resonance float64, trajectory *core.Trajectory) float64 {
	if trajectory == nil || len(trajectory.Experiences) < 3 {
		return resonance
	}
	rate := ComputePropagationRate(trajectory)
	switch {
	case rate > 0.5:
		resonance = math.Min(resonance+math.Min(rate*0.15, 0.1), 1.0)
	case rate < 0.2:
		resonance = math.Max(resonance-0.15*(1-rate), 0.0)
	}
	return core.Clamp(resonance, 0, 1)
}
