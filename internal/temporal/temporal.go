// Package temporal evaluates an experience at five fixed horizons and
// derives the trend (arc) across them.
package temporal

import (
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
)

var horizons = []core.TimeHorizon{
	core.HorizonImmediate,
	core.HorizonShortTerm,
	core.HorizonMediumTerm,
	core.HorizonLongTerm,
	core.HorizonGenerational,
}

// Evaluate returns one HorizonAssessment per fixed horizon, per §4.5. A
// horizon's Score is nil when evidence for it is not yet present.
func Evaluate(experience *core.Experience, trajectory *core.Trajectory) []core.HorizonAssessment {
	out := make([]core.HorizonAssessment, 0, len(horizons))
	for _, h := range horizons {
		out = append(out, evaluateHorizon(h, experience, trajectory))
	}
	return out
}

func evaluateHorizon(h core.TimeHorizon, e *core.Experience, t *core.Trajectory) core.HorizonAssessment {
	switch h {
	case core.HorizonImmediate:
		score := e.UserRating
		return core.HorizonAssessment{Horizon: h, Score: &score}

	case core.HorizonShortTerm:
		followUps := inWindow(e, 0, 3*24*time.Hour)
		if len(followUps) == 0 {
			return core.HorizonAssessment{Horizon: h, Note: "no follow-up evidence within 3 days"}
		}
		score := core.Clamp(0.4*rateOf(followUps, func(f core.FollowUp) bool { return f.CreatedSomething })+
			0.3*rateOf(followUps, func(f core.FollowUp) bool { return f.SharedOrTaught })+
			0.3*rateOf(followUps, func(f core.FollowUp) bool { return f.InspiredFurtherAction }), 0, 1)
		return core.HorizonAssessment{Horizon: h, Score: &score}

	case core.HorizonMediumTerm:
		followUps := inWindow(e, 3*24*time.Hour, 60*24*time.Hour)
		if len(followUps) == 0 {
			return core.HorizonAssessment{Horizon: h, Note: "no follow-up evidence in the 3-60 day window"}
		}
		createdFraction := rateOf(followUps, func(f core.FollowUp) bool { return f.CreatedSomething })
		directionBefore, directionAfter := splitDirection(e)
		score := core.Clamp(0.6*createdFraction+0.4*core.Clamp((directionAfter-directionBefore+1)/2, 0, 1), 0, 1)
		return core.HorizonAssessment{Horizon: h, Score: &score}

	case core.HorizonLongTerm:
		longFollowUps := inWindow(e, 60*24*time.Hour, 0)
		hasLong := len(longFollowUps) >= 1
		hasEnoughHistory := t != nil && len(t.Experiences) >= 5
		if !hasLong && !hasEnoughHistory {
			return core.HorizonAssessment{Horizon: h, Note: "needs a 60+ day follow-up or 5+ experiences"}
		}
		compounding, creationRate := 0.0, 0.0
		if t != nil {
			compounding = t.CompoundingDirection
			creationRate = t.CreationRate
		}
		score := core.Clamp(0.5*core.Clamp((compounding+1)/2, 0, 1)+0.5*creationRate, 0, 1)
		return core.HorizonAssessment{Horizon: h, Score: &score}

	case core.HorizonGenerational:
		if t == nil || len(t.Experiences) < 20 {
			return core.HorizonAssessment{Horizon: h, Note: "needs 20+ experiences"}
		}
		score := core.Clamp(0.4*t.PropagationRate+0.3*t.CreationRate+0.3*core.Clamp((t.CompoundingDirection+1)/2, 0, 1), 0, 1)
		return core.HorizonAssessment{Horizon: h, Score: &score}
	}
	return core.HorizonAssessment{Horizon: h}
}

// inWindow returns follow-ups whose age (relative to e.Timestamp) falls in
// [minAge, maxAge). maxAge == 0 means "no upper bound."
func inWindow(e *core.Experience, minAge, maxAge time.Duration) []core.FollowUp {
	var out []core.FollowUp
	for _, f := range e.FollowUps {
		age := f.Timestamp.Sub(e.Timestamp)
		if age < minAge {
			continue
		}
		if maxAge > 0 && age >= maxAge {
			continue
		}
		out = append(out, f)
	}
	return out
}

func rateOf(followUps []core.FollowUp, pred func(core.FollowUp) bool) float64 {
	if len(followUps) == 0 {
		return 0
	}
	var n int
	for _, f := range followUps {
		if pred(f) {
			n++
		}
	}
	return float64(n) / float64(len(followUps))
}

// splitDirection compares the direction implied by follow-ups before vs.
// after the midpoint of the medium-term window, approximating
// "direction_before" / "direction_after" from raw booleans.
func splitDirection(e *core.Experience) (before, after float64) {
	followUps := inWindow(e, 3*24*time.Hour, 60*24*time.Hour)
	if len(followUps) < 2 {
		return 0, 0
	}
	mid := len(followUps) / 2
	directionOf := func(fs []core.FollowUp) float64 {
		if len(fs) == 0 {
			return 0
		}
		var sum float64
		for _, f := range fs {
			m := 0.0
			if f.CreatedSomething {
				m = f.EffectiveMagnitude()
			}
			sum += core.Clamp(2*m-1, -1, 1)
		}
		return sum / float64(len(fs))
	}
	return directionOf(followUps[:mid]), directionOf(followUps[mid:])
}

// ComputeArcTrend derives the trend across non-nil horizon assessments,
// sorted by horizon order, per §4.5.
func ComputeArcTrend(assessments []core.HorizonAssessment) core.ArcTrend {
	var present []core.HorizonAssessment
	for _, a := range assessments {
		if a.Score != nil {
			present = append(present, a)
		}
	}
	if len(present) < 2 {
		return core.ArcInsufficientData
	}
	for i := 1; i < len(present); i++ {
		for j := i; j > 0 && core.HorizonOrder(present[j].Horizon) < core.HorizonOrder(present[j-1].Horizon); j-- {
			present[j], present[j-1] = present[j-1], present[j]
		}
	}

	var sum float64
	for i := 1; i < len(present); i++ {
		sum += *present[i].Score - *present[i-1].Score
	}
	avg := sum / float64(len(present)-1)

	switch {
	case avg > 0.05:
		return core.ArcImproving
	case avg < -0.05:
		return core.ArcDeclining
	default:
		return core.ArcStable
	}
}

var horizonWeights = map[core.TimeHorizon]float64{
	core.HorizonImmediate:    0.05,
	core.HorizonShortTerm:    0.10,
	core.HorizonMediumTerm:   0.20,
	core.HorizonLongTerm:     0.30,
	core.HorizonGenerational: 0.35,
}

// WeightedScore aggregates present horizon scores using fixed weights,
// normalized over the horizons actually present. Returns nil if none present.
func WeightedScore(assessments []core.HorizonAssessment) *float64 {
	var weightedSum, totalWeight float64
	var any bool
	for _, a := range assessments {
		if a.Score == nil {
			continue
		}
		w := horizonWeights[a.Horizon]
		weightedSum += w * (*a.Score)
		totalWeight += w
		any = true
	}
	if !any || totalWeight == 0 {
		return nil
	}
	result := weightedSum / totalWeight
	return &result
}
