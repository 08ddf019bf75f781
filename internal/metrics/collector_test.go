package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCollectorDefaults(t *testing.T) {
	c := NewCollector()
	require := assert.New(t)
	require.NotNil(c)
	require.Equal(24*time.Hour, c.windowSize)
	require.Empty(c.metrics)
	require.Zero(c.OperationCount("process_experience"))
}

func TestRecordAssessmentTracksOperationCount(t *testing.T) {
	c := NewCollector()
	c.RecordAssessment(0.7, "Optimal", 5*time.Millisecond)

	assert.Equal(t, 3, c.OperationCount("process_experience"))
	avg, ok := c.AverageByType(MetricQualityScore)
	assert.True(t, ok)
	assert.Equal(t, 0.7, avg)
}

func TestAverageByTypeEmptyWithoutData(t *testing.T) {
	c := NewCollector()
	avg, ok := c.AverageByType(MetricResonance)
	assert.False(t, ok)
	assert.Zero(t, avg)
}

func TestBelowThresholdDetectsDrift(t *testing.T) {
	c := NewCollector()
	c.RecordAssessment(0.1, "Junk Food", time.Millisecond)
	assert.True(t, c.BelowThreshold("quality_score", MetricQualityScore))

	c2 := NewCollector()
	c2.RecordAssessment(0.9, "Optimal", time.Millisecond)
	assert.False(t, c2.BelowThreshold("quality_score", MetricQualityScore))
}

func TestBelowThresholdUnknownNameIsFalse(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.BelowThreshold("unknown", MetricQualityScore))
}
