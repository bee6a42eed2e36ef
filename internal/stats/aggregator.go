// Package stats rebuilds all derived statistics from the event ledger.
package stats

import (
	"math"

	"github.com/yourusername/hexabet/internal/bucket"
	"github.com/yourusername/hexabet/internal/models"
)

// Rebuild recomputes per-bucket aggregates from the full ledger. It walks
// every contender slot of every record and depends on nothing but the
// records themselves, so it also serves as the recovery path when a
// derived blob is corrupt.
func Rebuild(records []models.EventRecord) models.BucketStatsSet {
	set := models.NewBucketStatsSet()

	// Flat unit staking: one unit per observation, returned stake x (odds+1)
	// on a win. Tracked alongside the set because only the final ROI is kept.
	returned := map[models.BucketKey]float64{}

	for _, rec := range records {
		for i := 0; i < models.ContenderCount; i++ {
			key := bucket.Classify(rec.Odds[i])
			b := set.Get(key)

			b.Total++
			b.ImpliedSum += rec.ImpliedProbs[i]

			outcome := 0
			if i == rec.ActualFirst {
				outcome = 1
				b.Wins++
				returned[key] += rec.Odds[i] + 1
			}
			if i == rec.ActualFirst || i == rec.ActualSecond || i == rec.ActualThird {
				b.Top3++
			}

			b.RecentOutcomes = append(b.RecentOutcomes, outcome)
			if len(b.RecentOutcomes) > models.RecentWindowSize {
				b.RecentOutcomes = b.RecentOutcomes[1:]
			}
		}
	}

	for _, b := range set.All() {
		finalize(b, returned[b.Key])
	}

	return set
}

func finalize(b *models.BucketStats, returned float64) {
	if b.Total == 0 {
		return
	}

	b.ImpliedMean = b.ImpliedSum / float64(b.Total)
	b.WinRate = float64(b.Wins) / float64(b.Total) * 100

	staked := float64(b.Total)
	b.ROI = (returned - staked) / staked * 100

	b.VarianceScore = populationStdDev(b.RecentOutcomes)
	b.RecentWinRate = winRate(b.RecentOutcomes)
}

func populationStdDev(outcomes []int) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	mean := 0.0
	for _, o := range outcomes {
		mean += float64(o)
	}
	mean /= float64(len(outcomes))

	variance := 0.0
	for _, o := range outcomes {
		diff := float64(o) - mean
		variance += diff * diff
	}
	variance /= float64(len(outcomes))
	return math.Sqrt(variance)
}

func winRate(outcomes []int) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	wins := 0
	for _, o := range outcomes {
		wins += o
	}
	return float64(wins) / float64(len(outcomes)) * 100
}
