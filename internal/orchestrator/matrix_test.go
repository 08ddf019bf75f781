package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chusla/improvement-axiom/internal/core"
)

func TestMatrixPositionCoversAllQuadrants(t *testing.T) {
	assert.Equal(t, "Optimal", matrixPosition(0.8, core.CreativeIntent))
	assert.Equal(t, "Slop", matrixPosition(0.2, core.CreativeIntent))
	assert.Equal(t, "Hedonism", matrixPosition(0.8, core.ConsumptiveIntent))
	assert.Equal(t, "Junk Food", matrixPosition(0.2, core.ConsumptiveIntent))
	assert.Equal(t, "Transitional-High", matrixPosition(0.8, core.MixedIntent))
	assert.Equal(t, "Transitional-Low", matrixPosition(0.2, core.MixedIntent))
	assert.Equal(t, "Pending-High", matrixPosition(0.8, core.PendingIntent))
	assert.Equal(t, "Pending-Low", matrixPosition(0.2, core.PendingIntent))
}

func TestBuildRecommendationsAlwaysEndsWithReflectionPrompt(t *testing.T) {
	recs := buildRecommendations("Optimal", true, "", true, "")
	require := assert.New(t)
	require.NotEmpty(recs)
	require.Contains(recs[len(recs)-1], "a month from now")
}

func TestBuildRecommendationsSurfacesDriftAndHealthWarnings(t *testing.T) {
	recs := buildRecommendations("Slop", false, "diverges from evidence", false, "low creation rate")
	assert.Contains(t, recs, "Worth a second look: diverges from evidence")
	assert.Contains(t, recs, "Pattern check: low creation rate")
}
