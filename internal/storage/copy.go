package storage

import "github.com/chusla/improvement-axiom/internal/core"

// copyFollowUp deep-copies a FollowUp. FollowUp has no reference fields, so
// a value copy already suffices, but the helper exists for symmetry with the
// other copiers and to absorb future reference fields without call-site changes.
func copyFollowUp(f core.FollowUp) core.FollowUp {
	return f
}

// copyVectorSnapshot deep-copies a VectorSnapshot; value type, no references.
func copyVectorSnapshot(v core.VectorSnapshot) core.VectorSnapshot {
	return v
}

// copyHorizonAssessment deep-copies a HorizonAssessment, including its
// pointer Score field.
func copyHorizonAssessment(h core.HorizonAssessment) core.HorizonAssessment {
	cp := h
	if h.Score != nil {
		score := *h.Score
		cp.Score = &score
	}
	return cp
}

// copyExperience deep-copies an Experience to prevent external mutation
// from aliasing the stored copy.
func copyExperience(e *core.Experience) *core.Experience {
	if e == nil {
		return nil
	}
	cp := *e

	if len(e.FollowUps) > 0 {
		cp.FollowUps = make([]core.FollowUp, len(e.FollowUps))
		for i, f := range e.FollowUps {
			cp.FollowUps[i] = copyFollowUp(f)
		}
	}
	if len(e.VectorSnapshots) > 0 {
		cp.VectorSnapshots = make([]core.VectorSnapshot, len(e.VectorSnapshots))
		for i, v := range e.VectorSnapshots {
			cp.VectorSnapshots[i] = copyVectorSnapshot(v)
		}
	}
	if len(e.HorizonAssessments) > 0 {
		cp.HorizonAssessments = make([]core.HorizonAssessment, len(e.HorizonAssessments))
		for i, h := range e.HorizonAssessments {
			cp.HorizonAssessments[i] = copyHorizonAssessment(h)
		}
	}
	if len(e.QualityDimensions) > 0 {
		cp.QualityDimensions = make(map[string]float64, len(e.QualityDimensions))
		for k, v := range e.QualityDimensions {
			cp.QualityDimensions[k] = v
		}
	}
	if len(e.PropagationEvents) > 0 {
		cp.PropagationEvents = make([]string, len(e.PropagationEvents))
		copy(cp.PropagationEvents, e.PropagationEvents)
	}
	return &cp
}

// copyTrajectory deep-copies a Trajectory, including every owned Experience,
// so that load/save never hand callers a reference into storage's own state.
func copyTrajectory(t *core.Trajectory) *core.Trajectory {
	if t == nil {
		return nil
	}
	cp := *t

	if len(t.Experiences) > 0 {
		cp.Experiences = make([]*core.Experience, len(t.Experiences))
		for i, e := range t.Experiences {
			cp.Experiences[i] = copyExperience(e)
		}
	}
	if len(t.VectorHistory) > 0 {
		cp.VectorHistory = make([]core.VectorSnapshot, len(t.VectorHistory))
		for i, v := range t.VectorHistory {
			cp.VectorHistory[i] = copyVectorSnapshot(v)
		}
	}
	return &cp
}
