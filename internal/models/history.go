package models

// BettingHistory holds cumulative totals over the full ledger. It is a
// pure fold over the event records and is recomputable at any time.
type BettingHistory struct {
	TotalRaces    int     `json:"total_races"`
	Wins          int     `json:"wins"`
	TotalProfit   float64 `json:"total_profit"`
	TotalInvested float64 `json:"total_invested"`
	ROI           float64 `json:"roi"`
	WinRate       float64 `json:"win_rate"`
}
