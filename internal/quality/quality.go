// Package quality scores an experience's response depth across five
// weighted dimensions: how substantively it was acted on, not how often.
package quality

import (
	"math"
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
)

const (
	weightSignalDepth    = 0.35
	weightRecursiveness  = 0.20
	weightDurability     = 0.20
	weightGrowthEnabling = 0.15
	weightAuthenticity   = 0.10
)

// Assess computes the five-dimension quality score for experience, in the
// context of its trajectory (nil for a cold-start user).
func Assess(experience *core.Experience, trajectory *core.Trajectory) (float64, map[string]float64) {
	dims := map[string]float64{
		"signal_depth":    signalDepth(experience),
		"recursiveness":   recursiveness(experience),
		"durability":      durability(experience),
		"growth_enabling": growthEnabling(experience, trajectory),
		"authenticity":    authenticity(experience, trajectory),
	}
	score := weightSignalDepth*dims["signal_depth"] +
		weightRecursiveness*dims["recursiveness"] +
		weightDurability*dims["durability"] +
		weightGrowthEnabling*dims["growth_enabling"] +
		weightAuthenticity*dims["authenticity"]
	return core.Clamp(score, 0, 1), dims
}

func isActive(f core.FollowUp) bool {
	return f.CreatedSomething || f.SharedOrTaught || f.InspiredFurtherAction
}

func activeRate(followUps []core.FollowUp) float64 {
	if len(followUps) == 0 {
		return 0
	}
	var active int
	for _, f := range followUps {
		if isActive(f) {
			active++
		}
	}
	return float64(active) / float64(len(followUps))
}

func signalDepth(e *core.Experience) float64 {
	if len(e.FollowUps) == 0 {
		return e.UserRating * 0.4
	}

	rate := activeRate(e.FollowUps)

	var sawCreated, sawShared, sawInspired bool
	var earliestActive *time.Time
	for _, f := range e.FollowUps {
		if f.CreatedSomething {
			sawCreated = true
		}
		if f.SharedOrTaught {
			sawShared = true
		}
		if f.InspiredFurtherAction {
			sawInspired = true
		}
		if isActive(f) {
			ts := f.Timestamp
			if earliestActive == nil || ts.Before(*earliestActive) {
				earliestActive = &ts
			}
		}
	}

	var breadth float64
	if sawCreated {
		breadth += 0.4
	}
	if sawShared {
		breadth += 0.3
	}
	if sawInspired {
		breadth += 0.3
	}

	var speed float64
	if earliestActive != nil {
		age := earliestActive.Sub(e.Timestamp)
		switch {
		case age <= 6*time.Hour:
			speed = 1.0
		case age <= 24*time.Hour:
			speed = 0.85
		case age <= 3*24*time.Hour:
			speed = 0.7
		case age <= 7*24*time.Hour:
			speed = 0.55
		case age <= 30*24*time.Hour:
			speed = 0.4
		default:
			speed = 0.2
		}
	}

	return core.Clamp(0.55*rate+0.25*breadth+0.20*speed, 0, 1)
}

func recursiveness(e *core.Experience) float64 {
	var nCreations, nCreatedAndShared, nCreatedAndInspired int
	for _, f := range e.FollowUps {
		if f.CreatedSomething {
			nCreations++
			if f.SharedOrTaught {
				nCreatedAndShared++
			}
			if f.InspiredFurtherAction {
				nCreatedAndInspired++
			}
		}
	}
	if nCreations == 0 {
		return 0
	}
	score := 0.3 +
		math.Min(0.15*float64(nCreations-1), 0.35) +
		math.Min(0.15*float64(nCreatedAndShared), 0.25) +
		math.Min(0.1*float64(nCreatedAndInspired), 0.2)
	return core.Clamp(score, 0, 1)
}

func durability(e *core.Experience) float64 {
	if len(e.FollowUps) == 0 {
		return e.UserRating * 0.3
	}

	var short, medium, long []core.FollowUp
	for _, f := range e.FollowUps {
		age := f.Timestamp.Sub(e.Timestamp)
		switch {
		case age < 3*24*time.Hour:
			short = append(short, f)
		case age < 60*24*time.Hour:
			medium = append(medium, f)
		default:
			long = append(long, f)
		}
	}

	type bucket struct {
		followUps []core.FollowUp
		weight    float64
	}
	buckets := []bucket{
		{short, 0.20},
		{medium, 0.35},
		{long, 0.45},
	}

	var weightedSum, totalWeight float64
	for _, b := range buckets {
		if len(b.followUps) == 0 {
			continue
		}
		weightedSum += b.weight * activeRate(b.followUps)
		totalWeight += b.weight
	}
	if totalWeight == 0 {
		return 0
	}
	score := weightedSum / totalWeight
	if len(medium) == 0 && len(long) == 0 {
		score = math.Min(score, 0.45)
	}
	return core.Clamp(score, 0, 1)
}

func growthEnabling(e *core.Experience, trajectory *core.Trajectory) float64 {
	if trajectory == nil || len(trajectory.Experiences) < 2 {
		return 0
	}
	idx := -1
	for i, other := range trajectory.Experiences {
		if other.ID == e.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}

	before := trajectory.Experiences[:idx]
	after := trajectory.Experiences[idx+1:]
	if len(before) == 0 || len(after) == 0 {
		return 0
	}

	propRate := func(exps []*core.Experience) float64 {
		var propagated int
		for _, x := range exps {
			if x.Propagated {
				propagated++
			}
		}
		return float64(propagated) / float64(len(exps))
	}
	avgDirection := func(exps []*core.Experience) float64 {
		var sum float64
		var n int
		for _, x := range exps {
			if snap, ok := x.CurrentVector(); ok {
				sum += snap.Direction
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	deltaPropagation := propRate(after) - propRate(before)
	directionEarlier := avgDirection(before)
	directionLatest := avgDirection(after)

	return core.Clamp(0.6*core.Clamp(deltaPropagation+0.5, 0, 1)+0.4*core.Clamp((directionLatest-directionEarlier+1)/2, 0, 1), 0, 1)
}

func authenticity(e *core.Experience, trajectory *core.Trajectory) float64 {
	rate := activeRate(e.FollowUps)

	var selfScore float64
	switch {
	case e.UserRating > 0.7 && rate > 0.5:
		selfScore = 0.9
	case e.UserRating > 0.7 && rate <= 0.5:
		selfScore = 0.3 // spike-crash: high self-report, low action
	case e.UserRating < 0.4 && rate > 0.3:
		selfScore = 0.8 // quiet doer: low self-report, real action
	default:
		selfScore = 0.6
	}

	trajConsistency := 1.0
	if trajectory != nil {
		var scores []float64
		for _, x := range trajectory.Experiences {
			if x.ID == e.ID {
				continue
			}
			scores = append(scores, x.QualityScore)
		}
		if len(scores) > 5 {
			scores = scores[len(scores)-5:]
		}
		if len(scores) >= 2 {
			trajConsistency = core.Clamp(1-2*stdev(scores), 0, 1)
		}
	}

	return core.Clamp(0.6*selfScore+0.4*trajConsistency, 0, 1)
}

func stdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
