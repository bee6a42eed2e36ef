package service

import (
	"time"

	"github.com/yourusername/hexabet/internal/model"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/stats"
)

// Refold recomputes every piece of derived state from the raw records.
// The model state is folded from its defaults over the records in append
// order: a weight nudge per record, a calibration update against the
// actual winner, and a drift check at every 20th record. Because nothing
// but the records feeds the fold, two calls over the same ledger produce
// identical bucket stats, history, and model values.
func Refold(records []models.EventRecord, now time.Time) (models.BucketStatsSet, models.BettingHistory, models.ModelState) {
	set := stats.Rebuild(records)
	history := stats.FoldHistory(records)

	state := models.NewModelState()
	for i := range records {
		rec := &records[i]

		state.Weights = model.UpdateWeights(state.Weights, rec.RecommendedWon())
		state.Calibration = model.UpdateCalibration(
			state.Calibration,
			rec.AdjustedProbs[rec.ActualFirst],
			rec.ImpliedProbs[rec.ActualFirst],
		)

		if (i+1)%model.DriftWindow == 0 {
			state.Drift = model.CheckDrift(state.Drift, records[:i+1], model.DriftWindow, now)
		}
	}

	state.ProcessedEvents = len(records)
	state.Accuracy = model.Accuracy(records)
	state.ConfidenceScale = model.ConfidenceScale(len(records))
	state.UpdatedAt = now

	return set, history, state
}
