package resonance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chusla/improvement-axiom/internal/semantic"
)

func TestPredictResonanceNilIndexDegradesToZero(t *testing.T) {
	p := NewPredictor(nil)
	score, basis, err := p.PredictResonance(context.Background(), "u1", "anything")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Nil(t, basis)
}

func TestPredictResonanceNoHistoryReturnsZero(t *testing.T) {
	index, err := semantic.NewIndex("", semantic.NewHashEmbedder(32))
	require.NoError(t, err)
	p := NewPredictor(index)

	score, basis, err := p.PredictResonance(context.Background(), "u1", "played a game")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Nil(t, basis)
}

func TestPredictResonanceWeightsByMatchedHistory(t *testing.T) {
	ctx := context.Background()
	index, err := semantic.NewIndex("", semantic.NewHashEmbedder(32))
	require.NoError(t, err)
	p := NewPredictor(index)

	require.NoError(t, index.IndexExperience(ctx, "u1", "e1", "Built a birdhouse from scrap wood", 0.8))
	require.NoError(t, index.IndexExperience(ctx, "u1", "e2", "Watched television reruns", 0.2))

	score, basis, err := p.PredictResonance(ctx, "u1", "Built a birdhouse from scrap wood")
	require.NoError(t, err)
	assert.NotEmpty(t, basis)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}
