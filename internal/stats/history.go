package stats

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/hexabet/internal/models"
)

// FoldHistory computes cumulative betting totals over the ledger. Money
// amounts are accumulated as decimals so that long histories of stake-sized
// values do not pick up float drift before the final ratios.
func FoldHistory(records []models.EventRecord) models.BettingHistory {
	history := models.BettingHistory{TotalRaces: len(records)}

	invested := decimal.Zero
	profit := decimal.Zero

	for _, rec := range records {
		if rec.RecommendedWon() {
			history.Wins++
		}
		invested = invested.Add(decimal.NewFromFloat(rec.Stake))
		profit = profit.Add(decimal.NewFromFloat(rec.ProfitLoss))
	}

	history.TotalInvested = invested.InexactFloat64()
	history.TotalProfit = profit.InexactFloat64()

	if history.TotalInvested > 0 {
		history.ROI = profit.Div(invested).InexactFloat64() * 100
	}
	if history.TotalRaces > 0 {
		history.WinRate = float64(history.Wins) / float64(history.TotalRaces) * 100
	}

	return history
}
