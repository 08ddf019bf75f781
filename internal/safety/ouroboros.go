// Package safety houses the two defensive layers that sit beside the core
// scoring pipeline: OuroborosAnchor, a drift and health detector over
// classifications already made, and ArtifactVerifier, which checks a
// user-submitted URL against the open web.
package safety

import (
	"math"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/vectortracker"
)

// labelDirection maps a canonical IntentionSignal to its representative
// direction, per §4.7. Only the canonical enum names are ever used here —
// the stale CREATIVE/CONSUMPTIVE pair from an earlier source revision does
// not exist in this model.
func labelDirection(signal core.IntentionSignal) float64 {
	switch signal {
	case core.CreativeIntent:
		return 0.8
	case core.ConsumptiveIntent:
		return -0.8
	default:
		return 0
	}
}

// ValidateClassification checks experience.ProvisionalIntention against the
// evidence that produced it, surfacing drift without blocking it.
func ValidateClassification(experience *core.Experience, trajectory *core.Trajectory) (valid bool, reason string) {
	if experience.IntentionConfidence < 0.3 {
		return true, "confidence too provisional to check for drift"
	}

	if len(experience.FollowUps) > 0 {
		var sum float64
		for _, f := range experience.FollowUps {
			sum += vectortracker.CreationSignal(f)
		}
		avg := sum / float64(len(experience.FollowUps))
		evidenceDirection := core.Clamp(2*avg-1, -1, 1)
		label := labelDirection(experience.ProvisionalIntention)
		if math.Abs(evidenceDirection-label) > 0.4 {
			return false, "follow-up evidence diverges from the classified label"
		}
	}

	if trajectory != nil && len(trajectory.VectorHistory) >= 3 {
		label := labelDirection(experience.ProvisionalIntention)
		if label > 0.3 && trajectory.CurrentVector.Direction < -0.3 && trajectory.CurrentVector.Confidence > 0.5 {
			return false, "label leans creative while the trajectory is trending consumptive — may be a turning point"
		}
	}

	return true, "classification consistent with evidence"
}

// CheckOuroborosHealth is a pattern-level check of whether the user's
// creation-to-consumption ratio and trajectory direction remain sustainable.
func CheckOuroborosHealth(trajectory *core.Trajectory) (healthy bool, reason string) {
	if trajectory == nil || len(trajectory.Experiences) < 3 {
		return true, "insufficient history to assess health"
	}

	if trajectory.CreationRate < 0.2 {
		if sustainedConsumption(trajectory) {
			return false, "sustained consumption: last five experiences are all CONSUMPTIVE_INTENT at confidence >= 0.3"
		}
		return false, "warning: creation rate is low, tilting toward unsustainable consumption"
	}

	if trajectory.CompoundingDirection < -0.3 {
		return false, "compounding direction is sharply negative"
	}

	return true, "healthy"
}

func sustainedConsumption(trajectory *core.Trajectory) bool {
	n := len(trajectory.Experiences)
	if n < 5 {
		return false
	}
	for _, e := range trajectory.Experiences[n-5:] {
		if e.ProvisionalIntention != core.ConsumptiveIntent || e.IntentionConfidence < 0.3 {
			return false
		}
	}
	return true
}
