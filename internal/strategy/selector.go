// Package strategy picks a recommended contender, or signals a skip, under
// one of four risk modes.
package strategy

import (
	"fmt"

	"github.com/yourusername/hexabet/internal/models"
)

const (
	// MinEdgeThreshold is the smallest value edge worth acting on. Shared by
	// the balanced, value, and aggressive modes and by the bet sizer.
	MinEdgeThreshold = 0.02

	// Balanced mode blends probability and edge. Tunable, not a contract.
	balancedProbWeight = 0.6
	balancedEdgeWeight = 0.4

	// Aggressive mode only considers contenders longer than these odds.
	aggressiveMinOdds = 5.0
)

// Recommendation is the outcome of a strategy evaluation. When Skip is set,
// Index is models.SkipIndex and Reason explains why no wager was advised.
type Recommendation struct {
	Skip   bool   `json:"skip"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Selector evaluates the four strategy modes over a prediction.
type Selector struct{}

// NewSelector creates a strategy selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Recommend picks a contender under the given mode. Ties are broken by the
// lowest index. Inputs are the six odds, the adjusted probabilities, and
// the per-contender value edges (adjusted minus implied).
func (s *Selector) Recommend(mode models.StrategyMode, odds, adjusted, edges [models.ContenderCount]float64) (Recommendation, error) {
	switch mode {
	case models.StrategySafe:
		return s.safe(adjusted), nil
	case models.StrategyBalanced:
		return s.balanced(adjusted, edges), nil
	case models.StrategyValue:
		return s.value(edges), nil
	case models.StrategyAggressive:
		return s.aggressive(odds, edges), nil
	default:
		return Recommendation{}, fmt.Errorf("recommend: %w: %q", models.ErrInvalidMode, mode)
	}
}

// safe takes the highest adjusted probability and never skips.
func (s *Selector) safe(adjusted [models.ContenderCount]float64) Recommendation {
	best := 0
	for i := 1; i < models.ContenderCount; i++ {
		if adjusted[i] > adjusted[best] {
			best = i
		}
	}
	return Recommendation{
		Index:  best,
		Reason: fmt.Sprintf("highest adjusted win probability (%.1f%%)", adjusted[best]*100),
	}
}

func (s *Selector) balanced(adjusted, edges [models.ContenderCount]float64) Recommendation {
	hasEdge := false
	best := 0
	bestScore := -1.0
	for i := 0; i < models.ContenderCount; i++ {
		if edges[i] > MinEdgeThreshold {
			hasEdge = true
		}
		edge := edges[i]
		if edge < 0 {
			edge = 0
		}
		score := balancedProbWeight*adjusted[i] + balancedEdgeWeight*edge
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if !hasEdge {
		return skip(fmt.Sprintf("no contender carries an edge above %.0f%%", MinEdgeThreshold*100))
	}
	return Recommendation{
		Index:  best,
		Reason: fmt.Sprintf("best probability/edge blend (score %.3f)", bestScore),
	}
}

func (s *Selector) value(edges [models.ContenderCount]float64) Recommendation {
	best := 0
	for i := 1; i < models.ContenderCount; i++ {
		if edges[i] > edges[best] {
			best = i
		}
	}
	if edges[best] < MinEdgeThreshold {
		return skip(fmt.Sprintf("best edge %.3f is below the %.0f%% threshold", edges[best], MinEdgeThreshold*100))
	}
	return Recommendation{
		Index:  best,
		Reason: fmt.Sprintf("largest value edge (%.1f%%)", edges[best]*100),
	}
}

func (s *Selector) aggressive(odds, edges [models.ContenderCount]float64) Recommendation {
	best := models.SkipIndex
	for i := 0; i < models.ContenderCount; i++ {
		if odds[i] <= aggressiveMinOdds || edges[i] <= MinEdgeThreshold {
			continue
		}
		if best == models.SkipIndex || edges[i] > edges[best] {
			best = i
		}
	}
	if best == models.SkipIndex {
		return skip(fmt.Sprintf("no contender above %.0f-to-1 has an edge over %.0f%%", aggressiveMinOdds, MinEdgeThreshold*100))
	}
	return Recommendation{
		Index:  best,
		Reason: fmt.Sprintf("best longshot edge (%.1f%% at %.0f-to-1)", edges[best]*100, odds[best]),
	}
}

func skip(reason string) Recommendation {
	return Recommendation{Skip: true, Index: models.SkipIndex, Reason: reason}
}
