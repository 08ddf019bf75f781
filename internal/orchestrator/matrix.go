package orchestrator

import (
	"fmt"

	"github.com/chusla/improvement-axiom/internal/core"
)

// qualityHighThreshold separates the "High" and "Low" rows of the matrix.
const qualityHighThreshold = 0.5

// matrixPosition maps (quality bucket, intention signal) to one of the
// eight fixed labels. A deterministic pure function of its inputs, per the
// idempotent-matrix-mapping invariant.
func matrixPosition(quality float64, signal core.IntentionSignal) string {
	high := quality > qualityHighThreshold
	switch signal {
	case core.CreativeIntent:
		if high {
			return "Optimal"
		}
		return "Slop"
	case core.ConsumptiveIntent:
		if high {
			return "Hedonism"
		}
		return "Junk Food"
	case core.MixedIntent:
		if high {
			return "Transitional-High"
		}
		return "Transitional-Low"
	default: // core.PendingIntent
		if high {
			return "Pending-High"
		}
		return "Pending-Low"
	}
}

// buildRecommendations turns a matrix position, plus the drift and
// ouroboros health checks, into a short list of human-facing suggestions.
// Always position- and drift-aware, always ends on an empowering,
// question-like suggestion rather than a directive.
func buildRecommendations(position string, driftValid bool, driftReason string, healthy bool, healthReason string) []string {
	var recs []string

	switch position {
	case "Optimal":
		recs = append(recs, "This looks like it's feeding a creative cycle — worth noticing what made it click.")
	case "Hedonism":
		recs = append(recs, "High quality, low creative follow-through so far — nothing wrong with enjoying it as-is.")
	case "Slop":
		recs = append(recs, "Early creative signal, but the depth isn't there yet — what would make this more substantive?")
	case "Junk Food":
		recs = append(recs, "Low reported depth and no creative follow-through — is this serving what you wanted it to?")
	case "Transitional-High", "Transitional-Low":
		recs = append(recs, "Mixed signal so far — the next follow-up will likely clarify which way this is trending.")
	default: // Pending-High, Pending-Low
		recs = append(recs, "Not enough evidence yet to say where this is headed — that's expected this early.")
	}

	if !driftValid {
		recs = append(recs, fmt.Sprintf("Worth a second look: %s", driftReason))
	}
	if !healthy {
		recs = append(recs, fmt.Sprintf("Pattern check: %s", healthReason))
	}

	recs = append(recs, "What would you want to be true about this a month from now?")
	return recs
}
