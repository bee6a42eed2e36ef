package sizing

import "github.com/yourusername/hexabet/internal/models"

// confidenceThresholds gate a grade on four model-quality inputs.
type confidenceThresholds struct {
	minSamples     float64
	maxVariance    float64
	minAccuracy    float64
	minCalibration float64
}

var (
	highThresholds   = confidenceThresholds{minSamples: 50, maxVariance: 0.4, minAccuracy: 0.55, minCalibration: 0.95}
	mediumThresholds = confidenceThresholds{minSamples: 20, maxVariance: 0.6, minAccuracy: 0.45, minCalibration: 0.85}
)

// Grade computes the discrete confidence level for an event from the
// buckets its six contenders fall into: average sample size, average
// variance, the model's current accuracy, and the calibration scalar.
func Grade(buckets [models.ContenderCount]models.BucketKey, set models.BucketStatsSet, state models.ModelState) models.ConfidenceLevel {
	samples := 0.0
	variance := 0.0
	for _, key := range buckets {
		b := set.Get(key)
		samples += float64(b.Total)
		variance += b.VarianceScore
	}
	samples /= models.ContenderCount
	variance /= models.ContenderCount

	if meets(highThresholds, samples, variance, state) {
		return models.ConfidenceHigh
	}
	if meets(mediumThresholds, samples, variance, state) {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

func meets(t confidenceThresholds, samples, variance float64, state models.ModelState) bool {
	return samples >= t.minSamples &&
		variance < t.maxVariance &&
		state.Accuracy >= t.minAccuracy &&
		state.Calibration >= t.minCalibration
}
