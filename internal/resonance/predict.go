package resonance

import (
	"context"
	"fmt"

	"github.com/chusla/improvement-axiom/internal/semantic"
)

// Predictor exposes the supplemental PredictResonance read-only operation
// described in §4.4: given a candidate description, find semantically
// similar past experiences of the same user and report their average
// resonance as an expected value.
type Predictor struct {
	index *semantic.Index
}

// NewPredictor wraps a semantic index for resonance prediction.
func NewPredictor(index *semantic.Index) *Predictor {
	return &Predictor{index: index}
}

// PredictResonance searches userID's own history (never cross-user) for
// experiences whose description resembles candidateDescription and returns
// a weighted average of their resonance scores, with matched experience IDs
// as the basis. Returns (0, nil) when the user has no comparable history —
// this is an enrichment, never on the critical path of the core pipeline.
func (p *Predictor) PredictResonance(ctx context.Context, userID, candidateDescription string) (float64, []string, error) {
	if p.index == nil {
		return 0, nil, nil
	}
	matches, err := p.index.Neighbors(ctx, userID, candidateDescription, 5)
	if err != nil {
		return 0, nil, fmt.Errorf("predict resonance: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil, nil
	}

	var weightedSum, totalWeight float64
	basis := make([]string, 0, len(matches))
	for _, m := range matches {
		weight := float64(m.Similarity)
		if weight <= 0 {
			continue
		}
		weightedSum += weight * m.Resonance
		totalWeight += weight
		basis = append(basis, m.ExperienceID)
	}
	if totalWeight == 0 {
		return 0, nil, nil
	}
	return weightedSum / totalWeight, basis, nil
}
