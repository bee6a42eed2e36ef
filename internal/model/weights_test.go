package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hexabet/internal/models"
)

func assertWeightInvariants(t *testing.T, w models.SignalWeights) {
	t.Helper()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	for _, v := range []float64{w.Odds, w.Historical, w.Recent, w.Consistency} {
		assert.GreaterOrEqual(t, v, models.WeightMin)
		assert.LessOrEqual(t, v, models.WeightMax)
	}
}

func TestUpdateWeightsDirection(t *testing.T) {
	start := models.NewModelState().Weights

	up := UpdateWeights(start, true)
	assertWeightInvariants(t, up)
	// The odds signal carries the largest share, so a correct prediction
	// shifts relative mass toward it.
	assert.Greater(t, up.Odds, start.Odds)
	assert.Less(t, up.Consistency, start.Consistency)

	down := UpdateWeights(start, false)
	assertWeightInvariants(t, down)
	assert.Less(t, down.Odds, start.Odds)
	assert.Greater(t, down.Consistency, start.Consistency)
}

func TestUpdateWeightsStaysInBandUnderRepeatedUpdates(t *testing.T) {
	w := models.NewModelState().Weights
	for i := 0; i < 1000; i++ {
		w = UpdateWeights(w, true)
		assertWeightInvariants(t, w)
	}
	for i := 0; i < 1000; i++ {
		w = UpdateWeights(w, false)
		assertWeightInvariants(t, w)
	}
}

func TestUpdateCalibration(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		predicted float64
		implied   float64
		expected  float64
	}{
		{"overestimate moves down", 1.0, 0.5, 0.3, 0.998},
		{"underestimate moves up", 1.0, 0.2, 0.4, 1.002},
		{"exact prediction holds", 1.0, 0.3, 0.3, 1.0},
		{"clamped at lower bound", 0.5, 1.0, 0.0, models.CalibrationMin},
		{"clamped at upper bound", 1.5, 0.0, 1.0, models.CalibrationMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateCalibration(tt.current, tt.predicted, tt.implied)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func driftRecords(count int, profitEach float64) []models.EventRecord {
	records := make([]models.EventRecord, count)
	for i := range records {
		rec := models.EventRecord{
			Odds:        [models.ContenderCount]float64{2, 3, 4, 5, 6, 7},
			Mode:        models.StrategyBalanced,
			Recommended: 0,
			Stake:       1000,
			ProfitLoss:  profitEach,
			ActualFirst: 0, ActualSecond: 1, ActualThird: 2,
		}
		if profitEach < 0 {
			rec.ActualFirst = 1
			rec.ActualSecond = 0
		}
		records[i] = rec
	}
	return records
}

func TestCheckDriftNeedsTwoWindows(t *testing.T) {
	prev := models.DriftState{DriftDetected: false, LastCheck: time.Unix(100, 0)}
	records := driftRecords(39, 1000)

	got := CheckDrift(prev, records, DriftWindow, time.Now())
	assert.Equal(t, prev, got)
}

func TestCheckDriftFlagsROICollapse(t *testing.T) {
	records := append(driftRecords(20, 1000), driftRecords(20, -1000)...)

	now := time.Now().UTC()
	state := CheckDrift(models.DriftState{}, records, DriftWindow, now)

	require.True(t, state.DriftDetected)
	// Historical ROI is +1.0, recent is -1.0, a gap of 2.0.
	assert.InDelta(t, 2.0, state.DriftScore, 1e-9)
	assert.InDelta(t, 1.0, state.BaselineAccuracy, 1e-9)
	assert.InDelta(t, 0.0, state.CurrentAccuracy, 1e-9)
	assert.Equal(t, now, state.LastCheck)
}

func TestCheckDriftStableROI(t *testing.T) {
	records := driftRecords(40, 1000)

	state := CheckDrift(models.DriftState{}, records, DriftWindow, time.Now())
	assert.False(t, state.DriftDetected)
	assert.InDelta(t, 0.0, state.DriftScore, 1e-9)
}

func TestAccuracy(t *testing.T) {
	won := models.EventRecord{Recommended: 0, Stake: 1000, ActualFirst: 0}
	lost := models.EventRecord{Recommended: 1, Stake: 1000, ActualFirst: 0}
	skipped := models.EventRecord{Recommended: models.SkipIndex, ActualFirst: 0}

	assert.Zero(t, Accuracy(nil))
	assert.InDelta(t, 0.5, Accuracy([]models.EventRecord{won, lost}), 1e-9)
	// A skip never counts as a correct call.
	assert.InDelta(t, 1.0/3.0, Accuracy([]models.EventRecord{won, lost, skipped}), 1e-9)
}

func TestConfidenceScale(t *testing.T) {
	assert.Zero(t, ConfidenceScale(0))
	assert.InDelta(t, 0.5, ConfidenceScale(50), 1e-9)
	assert.InDelta(t, 1.0, ConfidenceScale(100), 1e-9)
	assert.InDelta(t, 1.0, ConfidenceScale(250), 1e-9)
}
