// Package intention classifies an experience's inferred intent by blending
// its own follow-up evidence with the user's broader trajectory direction.
package intention

import (
	"math"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/vectortracker"
)

// Classify maps (experience, trajectory) to a discrete signal plus
// confidence, per §4.2. Trajectory may be nil for a cold-start user.
func Classify(experience *core.Experience, trajectory *core.Trajectory) (core.IntentionSignal, float64) {
	hasFollowUps := len(experience.FollowUps) > 0
	hasTrajectoryHistory := trajectory != nil && trajectory.HasHistory()

	var directionFU, confFU float64
	if hasFollowUps {
		var sum float64
		for _, f := range experience.FollowUps {
			sum += vectortracker.CreationSignal(f)
		}
		avg := sum / float64(len(experience.FollowUps))
		directionFU = core.Clamp(2*avg-1, -1, 1)
		confFU = math.Min(0.2+0.2*float64(len(experience.FollowUps)), 0.95)
	}

	var directionTraj, confTraj float64
	if hasTrajectoryHistory {
		directionTraj = trajectory.CurrentVector.Direction
		confTraj = trajectory.CurrentVector.Confidence
	}

	var direction, confidence float64
	switch {
	case hasFollowUps:
		direction = 0.45*directionTraj + 0.55*directionFU
		confidence = 0.45*confTraj + 0.55*confFU
	case hasTrajectoryHistory:
		direction = directionTraj
		confidence = math.Min(0.4*confTraj, 0.3)
	default:
		return core.PendingIntent, 0
	}

	signal := vectortracker.ClassifySignal(direction)
	if confidence < 0.15 {
		return core.PendingIntent, confidence
	}
	return signal, core.Clamp(confidence, 0, 1)
}
