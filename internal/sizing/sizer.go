// Package sizing converts value edge and model confidence into a bounded
// stake recommendation.
package sizing

import (
	"math"

	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/strategy"
)

const (
	baseStake = 1000.0
	minStake  = 1000.0
	maxStake  = 10000.0

	// The edge multiplier grows 10x per unit of edge and caps at doubling
	// the base stake.
	edgeSlope         = 10.0
	edgeMultiplierCap = 2.0
)

var confidenceMultiplier = map[models.ConfidenceLevel]float64{
	models.ConfidenceHigh:   1.5,
	models.ConfidenceMedium: 1.0,
	models.ConfidenceLow:    0.5,
}

// Stake computes the recommended wager. Returns 0, meaning no wager, when
// the edge does not clear the actionable threshold; otherwise the result is
// clamped to [1000, 10000] and rounded to the nearest 1000.
func Stake(edge float64, confidence models.ConfidenceLevel, state models.ModelState) float64 {
	_ = state

	if edge <= strategy.MinEdgeThreshold {
		return 0
	}

	multiplier := 1.0 + edgeSlope*math.Max(0, edge)
	if multiplier > edgeMultiplierCap {
		multiplier = edgeMultiplierCap
	}

	raw := baseStake * multiplier * confidenceMultiplier[confidence]
	if raw < minStake {
		raw = minStake
	}
	if raw > maxStake {
		raw = maxStake
	}

	return math.Round(raw/1000) * 1000
}
