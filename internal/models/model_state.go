package models

import "time"

// Weight bounds and defaults for the signal blending model.
const (
	WeightMin = 0.05
	WeightMax = 0.7

	DefaultOddsWeight        = 0.40
	DefaultHistoricalWeight  = 0.30
	DefaultRecentWeight      = 0.20
	DefaultConsistencyWeight = 0.10

	CalibrationMin     = 0.5
	CalibrationMax     = 1.5
	DefaultCalibration = 1.0
)

// SignalWeights are the four blending weights. They always sum to 1.0 and
// each lies within [WeightMin, WeightMax].
type SignalWeights struct {
	Odds        float64 `json:"odds"`
	Historical  float64 `json:"historical"`
	Recent      float64 `json:"recent"`
	Consistency float64 `json:"consistency"`
}

// Sum returns the total of the four weights.
func (w SignalWeights) Sum() float64 {
	return w.Odds + w.Historical + w.Recent + w.Consistency
}

// DriftState tracks degradation of recent accuracy against a historical
// baseline.
type DriftState struct {
	BaselineAccuracy float64   `json:"baseline_accuracy"`
	CurrentAccuracy  float64   `json:"current_accuracy"`
	DriftScore       float64   `json:"drift_score"`
	DriftDetected    bool      `json:"drift_detected"`
	LastCheck        time.Time `json:"last_check"`
}

// ModelState is the mutable model half of the derived state: blending
// weights, calibration scalar, confidence scaling, and drift detection.
// Rebuilt deterministically from the ledger, never persisted as authority.
type ModelState struct {
	Weights         SignalWeights `json:"weights"`
	Calibration     float64       `json:"calibration"`
	ConfidenceScale float64       `json:"confidence_scale"`
	ProcessedEvents int           `json:"processed_events"`
	Accuracy        float64       `json:"accuracy"`
	Drift           DriftState    `json:"drift"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewModelState returns the default state used before any event has been
// processed.
func NewModelState() ModelState {
	return ModelState{
		Weights: SignalWeights{
			Odds:        DefaultOddsWeight,
			Historical:  DefaultHistoricalWeight,
			Recent:      DefaultRecentWeight,
			Consistency: DefaultConsistencyWeight,
		},
		Calibration:     DefaultCalibration,
		ConfidenceScale: 0,
	}
}

// ConfidenceLevel grades how much trust the sizing layer places in a
// prediction.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)
