// Package engine blends implied probabilities with historical bucket
// signals into an adjusted probability vector.
package engine

import (
	"github.com/yourusername/hexabet/internal/bucket"
	"github.com/yourusername/hexabet/internal/models"
)

// adjustmentFloor bounds how far the blended signals can suppress an
// implied probability.
const adjustmentFloor = 0.1

// Prediction is the full output of one engine invocation: the normalized
// implied and adjusted probability vectors plus the per-contender signal
// inputs needed for the audit breakdown.
type Prediction struct {
	Implied  [models.ContenderCount]float64
	Adjusted [models.ContenderCount]float64
	Edges    [models.ContenderCount]float64
	Buckets  [models.ContenderCount]models.BucketKey

	winDeltas     [models.ContenderCount]float64
	recentDeltas  [models.ContenderCount]float64
	consistencies [models.ContenderCount]float64
	weights       models.SignalWeights
}

// ImpliedProbabilities converts six X-to-1 odds into a normalized implied
// probability vector. Raw implied is 1/(odds+1); the normalization removes
// the book's overround so the six values sum to exactly 1.
func ImpliedProbabilities(odds [models.ContenderCount]float64) [models.ContenderCount]float64 {
	var implied [models.ContenderCount]float64
	sum := 0.0
	for i, o := range odds {
		if o > 0 {
			implied[i] = 1.0 / (o + 1.0)
		}
		sum += implied[i]
	}
	if sum > 0 {
		for i := range implied {
			implied[i] /= sum
		}
	}
	return implied
}

// Predict runs the five-step blend: implied probabilities, bucket
// assignment, per-bucket signal extraction, weighted adjustment, and final
// normalization. Pure and deterministic for a given stats set and model
// state; buckets with zero observations contribute no signal, so on an
// empty ledger the adjusted vector equals the implied vector.
func Predict(odds [models.ContenderCount]float64, set models.BucketStatsSet, state models.ModelState) Prediction {
	p := Prediction{
		Implied: ImpliedProbabilities(odds),
		weights: state.Weights,
	}

	sum := 0.0
	for i, o := range odds {
		key := bucket.Classify(o)
		p.Buckets[i] = key
		b := set.Get(key)

		if b.Total > 0 {
			p.winDeltas[i] = b.WinRate/100 - b.ImpliedMean
			p.recentDeltas[i] = b.RecentWinRate / 100
			p.consistencies[i] = consistencyModifier(b.VarianceScore)
		}

		signal := state.Weights.Historical*p.winDeltas[i] +
			state.Weights.Recent*p.recentDeltas[i] +
			state.Weights.Consistency*p.consistencies[i]

		factor := 1.0 + state.Calibration*signal
		if factor < adjustmentFloor {
			factor = adjustmentFloor
		}
		p.Adjusted[i] = p.Implied[i] * factor
		sum += p.Adjusted[i]
	}

	if sum > 0 {
		for i := range p.Adjusted {
			p.Adjusted[i] /= sum
		}
	}
	for i := range p.Adjusted {
		p.Edges[i] = p.Adjusted[i] - p.Implied[i]
	}

	return p
}

// Breakdown returns the four raw signal contributions for a single
// contender, used for display and audit of the recommendation.
func (p *Prediction) Breakdown(index int) models.SignalBreakdown {
	if index < 0 || index >= models.ContenderCount {
		return models.SignalBreakdown{}
	}
	return models.SignalBreakdown{
		Odds:        p.Implied[index],
		Historical:  p.weights.Historical * p.winDeltas[index],
		Recent:      p.weights.Recent * p.recentDeltas[index],
		Consistency: p.weights.Consistency * p.consistencies[index],
	}
}

// consistencyModifier maps a bucket's variance score into [-0.1, +0.1].
// Low variance rewards the bucket, scaling linearly to zero at 0.5; higher
// variance penalizes it, reaching -0.1 at 1.0.
func consistencyModifier(variance float64) float64 {
	if variance < 0.5 {
		return 0.1 * (0.5 - variance) / 0.5
	}
	penalty := (variance - 0.5) / 0.5
	if penalty > 1 {
		penalty = 1
	}
	return -0.1 * penalty
}
