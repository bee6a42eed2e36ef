package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/hexabet/internal/models"
)

func TestStakeBelowThreshold(t *testing.T) {
	state := models.NewModelState()

	assert.Zero(t, Stake(0, models.ConfidenceHigh, state))
	assert.Zero(t, Stake(0.02, models.ConfidenceHigh, state))
	assert.Zero(t, Stake(-0.5, models.ConfidenceHigh, state))
}

func TestStakeScaling(t *testing.T) {
	state := models.NewModelState()

	tests := []struct {
		name       string
		edge       float64
		confidence models.ConfidenceLevel
		expected   float64
	}{
		{"small edge medium confidence", 0.05, models.ConfidenceMedium, 2000},
		{"small edge low confidence", 0.05, models.ConfidenceLow, 1000},
		{"small edge high confidence", 0.05, models.ConfidenceHigh, 2000},
		{"capped edge high confidence", 0.5, models.ConfidenceHigh, 3000},
		{"capped edge medium confidence", 0.5, models.ConfidenceMedium, 2000},
		{"capped edge low confidence", 0.5, models.ConfidenceLow, 1000},
		{"tiny actionable edge low confidence clamps to minimum", 0.021, models.ConfidenceLow, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stake(tt.edge, tt.confidence, state))
		})
	}
}

func TestStakeAlwaysBoundedAndRound(t *testing.T) {
	state := models.NewModelState()
	levels := []models.ConfidenceLevel{models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow}

	for edge := -0.1; edge <= 1.0; edge += 0.013 {
		for _, level := range levels {
			stake := Stake(edge, level, state)
			if stake == 0 {
				continue
			}
			assert.GreaterOrEqual(t, stake, 1000.0)
			assert.LessOrEqual(t, stake, 10000.0)
			assert.Zero(t, math.Mod(stake, 1000))
		}
	}
}

func gradeSet(total int, variance float64) models.BucketStatsSet {
	set := models.NewBucketStatsSet()
	for _, b := range set.All() {
		b.Total = total
		b.VarianceScore = variance
	}
	return set
}

func allBuckets(key models.BucketKey) [models.ContenderCount]models.BucketKey {
	var buckets [models.ContenderCount]models.BucketKey
	for i := range buckets {
		buckets[i] = key
	}
	return buckets
}

func TestGrade(t *testing.T) {
	buckets := allBuckets(models.BucketMid)

	tests := []struct {
		name        string
		total       int
		variance    float64
		accuracy    float64
		calibration float64
		expected    models.ConfidenceLevel
	}{
		{"strong model", 80, 0.3, 0.60, 1.0, models.ConfidenceHigh},
		{"moderate sample", 25, 0.5, 0.50, 0.9, models.ConfidenceMedium},
		{"tiny sample", 5, 0.2, 0.70, 1.2, models.ConfidenceLow},
		{"noisy outcomes", 80, 0.7, 0.60, 1.0, models.ConfidenceLow},
		{"weak accuracy", 80, 0.3, 0.40, 1.0, models.ConfidenceLow},
		{"shrunken calibration", 80, 0.3, 0.60, 0.7, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.NewModelState()
			state.Accuracy = tt.accuracy
			state.Calibration = tt.calibration

			got := Grade(buckets, gradeSet(tt.total, tt.variance), state)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGradeEmptySet(t *testing.T) {
	got := Grade(allBuckets(models.BucketLow), models.NewBucketStatsSet(), models.NewModelState())
	assert.Equal(t, models.ConfidenceLow, got)
}
