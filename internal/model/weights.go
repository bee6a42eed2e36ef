// Package model maintains the adaptive signal weights, the calibration
// scalar, and drift detection for the prediction engine.
package model

import (
	"time"

	"github.com/yourusername/hexabet/internal/models"
)

const (
	// Each update moves weight mass by at most 2% of the current value,
	// split across the four signals in fixed proportions.
	nudgeRate = 0.02

	oddsShare        = 0.40
	historicalShare  = 0.30
	recentShare      = 0.20
	consistencyShare = 0.10

	calibrationStep = 0.01

	// DriftWindow is the number of most recent records compared against the
	// historical baseline.
	DriftWindow = 20

	// driftThreshold is the ROI gap (as a fraction) beyond which drift is
	// flagged.
	driftThreshold = 0.15
)

// UpdateWeights nudges each weight in the direction of the prediction's
// correctness, then renormalizes, clamps to the allowed band, and
// renormalizes again. The result always sums to 1.0 with every weight in
// [models.WeightMin, models.WeightMax].
func UpdateWeights(w models.SignalWeights, wasCorrect bool) models.SignalWeights {
	direction := 1.0
	if !wasCorrect {
		direction = -1.0
	}

	w.Odds += direction * nudgeRate * w.Odds * oddsShare
	w.Historical += direction * nudgeRate * w.Historical * historicalShare
	w.Recent += direction * nudgeRate * w.Recent * recentShare
	w.Consistency += direction * nudgeRate * w.Consistency * consistencyShare

	w = normalize(w)
	w = clampWeights(w)
	return redistribute(w)
}

// redistribute restores a unit sum after clamping by moving the residual
// into weights that still have headroom, so no weight leaves its band.
func redistribute(w models.SignalWeights) models.SignalWeights {
	deficit := 1.0 - w.Sum()
	if deficit == 0 {
		return w
	}

	parts := []*float64{&w.Odds, &w.Historical, &w.Recent, &w.Consistency}
	headroom := 0.0
	for _, p := range parts {
		if deficit > 0 {
			headroom += models.WeightMax - *p
		} else {
			headroom += *p - models.WeightMin
		}
	}
	if headroom == 0 {
		return w
	}
	for _, p := range parts {
		if deficit > 0 {
			*p += deficit * (models.WeightMax - *p) / headroom
		} else {
			*p += deficit * (*p - models.WeightMin) / headroom
		}
	}
	return w
}

// UpdateCalibration moves the scalar against the signed prediction error
// for the actual winner and clamps it to the allowed range.
func UpdateCalibration(current, predicted, implied float64) float64 {
	next := current - (predicted-implied)*calibrationStep
	if next < models.CalibrationMin {
		return models.CalibrationMin
	}
	if next > models.CalibrationMax {
		return models.CalibrationMax
	}
	return next
}

// CheckDrift compares the ROI of the most recent window records against all
// prior records. It only evaluates once at least 2 x window records exist;
// before that it returns the previous state untouched.
func CheckDrift(prev models.DriftState, records []models.EventRecord, window int, now time.Time) models.DriftState {
	if window <= 0 {
		window = DriftWindow
	}
	if len(records) < 2*window {
		return prev
	}

	split := len(records) - window
	historical := records[:split]
	recent := records[split:]

	historicalROI := roiFraction(historical)
	recentROI := roiFraction(recent)

	state := models.DriftState{
		BaselineAccuracy: Accuracy(historical),
		CurrentAccuracy:  Accuracy(recent),
		DriftScore:       historicalROI - recentROI,
		LastCheck:        now,
	}
	state.DriftDetected = state.DriftScore > driftThreshold
	return state
}

// Accuracy is the share of records whose recommended contender finished
// first. Skipped events count as misses.
func Accuracy(records []models.EventRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	correct := 0
	for _, rec := range records {
		if rec.RecommendedWon() {
			correct++
		}
	}
	return float64(correct) / float64(len(records))
}

// ConfidenceScale grows linearly with processed events and saturates at
// 1.0 once a hundred events have been seen.
func ConfidenceScale(processed int) float64 {
	scale := float64(processed) / 100.0
	if scale > 1.0 {
		return 1.0
	}
	return scale
}

func roiFraction(records []models.EventRecord) float64 {
	invested := 0.0
	profit := 0.0
	for _, rec := range records {
		invested += rec.Stake
		profit += rec.ProfitLoss
	}
	if invested == 0 {
		return 0
	}
	return profit / invested
}

func normalize(w models.SignalWeights) models.SignalWeights {
	sum := w.Sum()
	if sum == 0 {
		return models.NewModelState().Weights
	}
	w.Odds /= sum
	w.Historical /= sum
	w.Recent /= sum
	w.Consistency /= sum
	return w
}

func clampWeights(w models.SignalWeights) models.SignalWeights {
	w.Odds = clamp(w.Odds, models.WeightMin, models.WeightMax)
	w.Historical = clamp(w.Historical, models.WeightMin, models.WeightMax)
	w.Recent = clamp(w.Recent, models.WeightMin, models.WeightMax)
	w.Consistency = clamp(w.Consistency, models.WeightMin, models.WeightMax)
	return w
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
