package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministicAndUnitNorm(t *testing.T) {
	h := NewHashEmbedder(32)
	v1, err := h.Embed(context.Background(), "played a game")
	require.NoError(t, err)
	v2, err := h.Embed(context.Background(), "played a game")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 32)

	var sumSquares float64
	for _, x := range v1 {
		sumSquares += float64(x * x)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-4)
}

func TestHashEmbedderRejectsEmptyText(t *testing.T) {
	h := NewHashEmbedder(32)
	_, err := h.Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestHashEmbedderDefaultsDimension(t *testing.T) {
	h := NewHashEmbedder(0)
	assert.Equal(t, 256, h.Dimension())
}

func TestIndexNeighborsEmptyForUnseenUser(t *testing.T) {
	idx, err := NewIndex("", NewHashEmbedder(16))
	require.NoError(t, err)
	matches, err := idx.Neighbors(context.Background(), "u1", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndexExperienceAndNeighborsFindsClosestMatch(t *testing.T) {
	idx, err := NewIndex("", NewHashEmbedder(16))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.IndexExperience(ctx, "u1", "e1", "Built a birdhouse from scrap wood", 0.8))
	require.NoError(t, idx.IndexExperience(ctx, "u1", "e2", "Watched television reruns", 0.2))

	matches, err := idx.Neighbors(ctx, "u1", "Built a birdhouse from scrap wood", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "e1", matches[0].ExperienceID)
	assert.InDelta(t, 0.8, matches[0].Resonance, 1e-6)
}

func TestIndexExperienceSkipsEmptyDescription(t *testing.T) {
	idx, err := NewIndex("", NewHashEmbedder(16))
	require.NoError(t, err)
	require.NoError(t, idx.IndexExperience(context.Background(), "u1", "e1", "", 0.5))

	matches, err := idx.Neighbors(context.Background(), "u1", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndexIsolatedPerUser(t *testing.T) {
	idx, err := NewIndex("", NewHashEmbedder(16))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, idx.IndexExperience(ctx, "u1", "e1", "Built a birdhouse", 0.8))

	matches, err := idx.Neighbors(ctx, "u2", "Built a birdhouse", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
