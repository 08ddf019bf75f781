// Package resonance measures how deeply an experience actually landed —
// raw self-report calibrated by observed action, then validated against
// trajectory-wide evidence through four ordered lenses.
package resonance

import (
	"math"
	"strings"

	"github.com/chusla/improvement-axiom/internal/core"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "with": {}, "was": {}, "is": {}, "it": {}, "this": {}, "that": {},
	"i": {}, "my": {}, "me": {}, "all": {}, "at": {}, "by": {}, "from": {},
}

// MeasureResonance computes the raw (un-validated) resonance for an
// experience from its self-reported rating calibrated by follow-up action,
// per §4.4.
func MeasureResonance(e *core.Experience) float64 {
	if len(e.FollowUps) == 0 {
		return math.Min(e.UserRating, 0.60)
	}

	var created, shared, inspired int
	for _, f := range e.FollowUps {
		if f.CreatedSomething {
			created++
		}
		if f.SharedOrTaught {
			shared++
		}
		if f.InspiredFurtherAction {
			inspired++
		}
	}
	n := float64(len(e.FollowUps))
	actionRate := 0.40*(float64(created)/n) + 0.30*(float64(shared)/n) + 0.30*(float64(inspired)/n)
	evidenceWeight := math.Min(0.15*n, 0.70)
	return core.Clamp((1-evidenceWeight)*e.UserRating+evidenceWeight*actionRate, 0, 1)
}

// Validate re-derives experience.ResonanceScore by applying the arc,
// propagation, dependency, and predictability lenses in order, per §4.4.
func Validate(experience *core.Experience, trajectory *core.Trajectory) float64 {
	score := experience.ResonanceScore

	score = applyArcLens(score, experience.HorizonAssessments)
	score = applyPropagationLens(score, trajectory)
	score = applyDependencyLens(score, trajectory)
	score = applyPredictabilityLens(score, trajectory)

	return core.Clamp(score, 0, 1)
}

func applyArcLens(score float64, assessments []core.HorizonAssessment) float64 {
	var present []core.HorizonAssessment
	for _, a := range assessments {
		if a.Score != nil {
			present = append(present, a)
		}
	}
	if len(present) < 2 {
		return score
	}
	sortByHorizonOrder(present)

	earliest := *present[0].Score
	latest := *present[len(present)-1].Score

	switch {
	case latest > earliest+0.1:
		score += 0.05
	case latest < earliest-0.1:
		score *= 1 - 0.5*(earliest-latest)
	}
	return score
}

func sortByHorizonOrder(a []core.HorizonAssessment) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && core.HorizonOrder(a[j].Horizon) < core.HorizonOrder(a[j-1].Horizon); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

func applyPropagationLens(score float64, trajectory *core.Trajectory) float64 {
	if trajectory == nil || len(trajectory.Experiences) < 3 {
		return score
	}
	rate := trajectory.PropagationRate
	switch {
	case rate > 0.5:
		score += 0.05
	case rate < 0.15:
		score -= 0.10
	}
	return score
}

func applyDependencyLens(score float64, trajectory *core.Trajectory) float64 {
	if trajectory == nil {
		return score
	}
	window := last(trajectory.Experiences, 8)
	if len(window) < 4 {
		return score
	}

	narrowing := narrowingVariety(window)
	escalation := escalationSignal(window)
	decliningReturns := decliningReturnsSignal(window)

	composite := 0.40*narrowing + 0.30*escalation + 0.30*decliningReturns
	if narrowing > 0.5 && escalation > 0.5 && decliningReturns > 0.5 {
		composite *= 1.5
	}
	composite = core.Clamp(composite, 0, 1)

	if composite > 0.7 {
		score *= 0.3
	}
	return score
}

func applyPredictabilityLens(score float64, trajectory *core.Trajectory) float64 {
	if trajectory == nil {
		return score
	}
	window := last(trajectory.Experiences, 10)
	if len(window) < 4 {
		return score
	}

	resonances := make([]float64, len(window))
	ratings := make([]float64, len(window))
	for i, e := range window {
		resonances[i] = e.ResonanceScore
		ratings[i] = e.UserRating
	}

	sd := stdev(resonances)
	var stdevScore float64
	switch {
	case sd < 0.05:
		stdevScore = 0.9
	case sd < 0.10:
		stdevScore = 0.5
	case sd < 0.15:
		stdevScore = 0.2
	}

	var ratingSum float64
	for _, r := range ratings {
		ratingSum += r
	}
	avgRating := ratingSum / float64(len(ratings))
	var inflationScore float64
	switch {
	case avgRating > 0.9:
		inflationScore = 0.8
	case avgRating > 0.8:
		inflationScore = 0.4
	}

	var nearZero int
	for i := 1; i < len(resonances); i++ {
		if math.Abs(resonances[i]-resonances[i-1]) < 0.02 {
			nearZero++
		}
	}
	monotonicity := float64(nearZero) / float64(len(resonances)-1)

	composite := 0.50*stdevScore + 0.25*inflationScore + 0.25*monotonicity
	if composite > 0.8 {
		score -= 0.15
	}
	return score
}

func last(experiences []*core.Experience, n int) []*core.Experience {
	if len(experiences) <= n {
		return experiences
	}
	return experiences[len(experiences)-n:]
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var intersection int
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// narrowingVariety is the average pairwise Jaccard similarity of tokenized
// descriptions in the window — high similarity means the user keeps doing
// the same narrow thing.
func narrowingVariety(window []*core.Experience) float64 {
	tokenSets := make([]map[string]struct{}, len(window))
	for i, e := range window {
		tokenSets[i] = tokenize(e.Description)
	}
	var sum float64
	var pairs int
	for i := 0; i < len(tokenSets); i++ {
		for j := i + 1; j < len(tokenSets); j++ {
			sum += jaccard(tokenSets[i], tokenSets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return core.Clamp(sum/float64(pairs), 0, 1)
}

// escalationSignal compares the average inter-event gap in the second half
// of the window against the first half; shrinking gaps (escalating
// frequency) score higher.
func escalationSignal(window []*core.Experience) float64 {
	if len(window) < 4 {
		return 0
	}
	mid := len(window) / 2
	earlyGap := avgGap(window[:mid+1])
	lateGap := avgGap(window[mid:])
	if earlyGap <= 0 {
		return 0
	}
	ratio := lateGap / earlyGap
	// A ratio < 1 means events are coming faster over time.
	return core.Clamp(1-ratio, 0, 1)
}

func avgGap(window []*core.Experience) float64 {
	if len(window) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(window); i++ {
		total += window[i].Timestamp.Sub(window[i-1].Timestamp).Hours()
	}
	return total / float64(len(window)-1)
}

// decliningReturnsSignal compares the first-half vs second-half resonance
// means in the window; a positive difference (first half higher) scores high.
func decliningReturnsSignal(window []*core.Experience) float64 {
	mid := len(window) / 2
	firstHalf, secondHalf := window[:mid], window[mid:]
	if len(firstHalf) == 0 || len(secondHalf) == 0 {
		return 0
	}
	mean := func(exps []*core.Experience) float64 {
		var sum float64
		for _, e := range exps {
			sum += e.ResonanceScore
		}
		return sum / float64(len(exps))
	}
	diff := mean(firstHalf) - mean(secondHalf)
	return core.Clamp(diff+0.5, 0, 1)
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
	return math.Sqrt(variance / float64(len(values)))
}
