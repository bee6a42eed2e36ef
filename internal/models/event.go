package models

import (
	"time"

	"github.com/google/uuid"
)

// ContenderCount is the fixed field size of every wagering event.
const ContenderCount = 6

// StrategyMode identifies the selection strategy used for an event.
type StrategyMode string

const (
	StrategySafe       StrategyMode = "safe"
	StrategyBalanced   StrategyMode = "balanced"
	StrategyValue      StrategyMode = "value"
	StrategyAggressive StrategyMode = "aggressive"
)

// Valid reports whether the mode is one of the four known strategies.
func (m StrategyMode) Valid() bool {
	switch m {
	case StrategySafe, StrategyBalanced, StrategyValue, StrategyAggressive:
		return true
	}
	return false
}

// EventStatus represents the lifecycle stage of an event
type EventStatus string

const (
	EventStatusProposed   EventStatus = "proposed"
	EventStatusResolved   EventStatus = "resolved"
	EventStatusRebuilding EventStatus = "rebuilding"
	EventStatusSettled    EventStatus = "settled"
)

// SignalBreakdown holds the raw signal contributions for the recommended
// contender, kept for display and audit.
type SignalBreakdown struct {
	Odds        float64 `json:"odds" db:"signal_odds"`
	Historical  float64 `json:"historical" db:"signal_historical"`
	Recent      float64 `json:"recent" db:"signal_recent"`
	Consistency float64 `json:"consistency" db:"signal_consistency"`
}

// SkipIndex marks an event where the strategy recommended no wager.
const SkipIndex = -1

// EventRecord is one immutable entry in the ledger. Once appended it is
// never mutated; the only removal path is an explicit undo of the latest
// record.
type EventRecord struct {
	ID            uuid.UUID               `json:"id" db:"id"`
	Odds          [ContenderCount]float64 `json:"odds" validate:"required,dive,gt=0"`
	ImpliedProbs  [ContenderCount]float64 `json:"implied_probs"`
	Mode          StrategyMode            `json:"mode" validate:"required"`
	AdjustedProbs [ContenderCount]float64 `json:"adjusted_probs"`
	Signals       SignalBreakdown         `json:"signals"`
	Recommended   int                     `json:"recommended" validate:"gte=-1,lt=6"`
	Stake         float64                 `json:"stake" validate:"gte=0"`
	ActualFirst   int                     `json:"actual_first" validate:"gte=0,lt=6"`
	ActualSecond  int                     `json:"actual_second" validate:"gte=0,lt=6"`
	ActualThird   int                     `json:"actual_third" validate:"gte=0,lt=6"`
	ProfitLoss    float64                 `json:"profit_loss"`
	Status        EventStatus             `json:"status"`
	CreatedAt     time.Time               `json:"created_at" db:"created_at"`
}

// RecommendedWon reports whether the recommended contender finished first.
func (e *EventRecord) RecommendedWon() bool {
	return e.Recommended >= 0 && e.Recommended == e.ActualFirst
}

// PlacedBet reports whether a wager was actually staked on this event.
func (e *EventRecord) PlacedBet() bool {
	return e.Recommended != SkipIndex && e.Stake > 0
}

// FinishersDistinct reports whether the three recorded finishing positions
// name three different contenders.
func (e *EventRecord) FinishersDistinct() bool {
	return e.ActualFirst != e.ActualSecond &&
		e.ActualFirst != e.ActualThird &&
		e.ActualSecond != e.ActualThird
}
