package intention

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chusla/improvement-axiom/internal/core"
)

func TestClassifyColdStartIsPendingWithZeroConfidence(t *testing.T) {
	exp := &core.Experience{}
	signal, confidence := Classify(exp, nil)
	assert.Equal(t, core.PendingIntent, signal)
	assert.Zero(t, confidence)
}

func TestClassifyWithCreativeFollowUpYieldsCreativeOrMixed(t *testing.T) {
	exp := &core.Experience{
		FollowUps: []core.FollowUp{
			{CreatedSomething: true, CreationMagnitude: 1.0, SharedOrTaught: true, InspiredFurtherAction: true},
		},
	}
	signal, confidence := Classify(exp, nil)
	assert.Contains(t, []core.IntentionSignal{core.CreativeIntent, core.MixedIntent}, signal)
	assert.Greater(t, confidence, 0.0)
}

func TestClassifyWithPureConsumptionFollowUpIsConsumptiveOrMixed(t *testing.T) {
	exp := &core.Experience{
		FollowUps: []core.FollowUp{
			{CreatedSomething: false, SharedOrTaught: false, InspiredFurtherAction: false},
			{CreatedSomething: false, SharedOrTaught: false, InspiredFurtherAction: false},
		},
	}
	signal, _ := Classify(exp, nil)
	assert.Contains(t, []core.IntentionSignal{core.ConsumptiveIntent, core.MixedIntent, core.PendingIntent}, signal)
}

func TestClassifyLowConfidenceFallsBackToPending(t *testing.T) {
	traj := &core.Trajectory{
		VectorHistory: []core.VectorSnapshot{{Direction: 0.1, Confidence: 0.05}},
		CurrentVector: core.VectorSnapshot{Direction: 0.1, Confidence: 0.05},
	}
	exp := &core.Experience{}
	signal, confidence := Classify(exp, traj)
	assert.Equal(t, core.PendingIntent, signal)
	assert.Less(t, confidence, 0.15)
}
