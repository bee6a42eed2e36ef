// Package service orchestrates the wagering tracker: event logging, full
// derived-state rebuilds, and listener notification.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/engine"
	"github.com/yourusername/hexabet/internal/ledger"
	"github.com/yourusername/hexabet/internal/metrics"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/sizing"
	"github.com/yourusername/hexabet/internal/storage"
	"github.com/yourusername/hexabet/internal/strategy"
)

// RemoteMirror optionally relays settled events to a remote ledger-logging
// endpoint. The tracker works fully without one.
type RemoteMirror interface {
	LogEvent(ctx context.Context, rec models.EventRecord) error
}

// EventInput is the client submission for one resolved event: the six odds
// as entered, the strategy mode in effect, and the actual finishing order.
type EventInput struct {
	Odds         []float64 `json:"odds" validate:"required,len=6,dive,gt=0"`
	Mode         string    `json:"mode" validate:"required,oneof=safe balanced value aggressive"`
	ActualFirst  int       `json:"actual_first" validate:"gte=0,lte=5"`
	ActualSecond int       `json:"actual_second" validate:"gte=0,lte=5"`
	ActualThird  int       `json:"actual_third" validate:"gte=0,lte=5"`
}

// Proposal is the pre-outcome output for a set of odds: adjusted
// probabilities, the strategy recommendation, and the stake preview.
type Proposal struct {
	Prediction     engine.Prediction       `json:"prediction"`
	Recommendation strategy.Recommendation `json:"recommendation"`
	Confidence     models.ConfidenceLevel  `json:"confidence"`
	Stake          float64                 `json:"stake"`
	Breakdown      models.SignalBreakdown  `json:"breakdown"`
}

// Tracker owns the ledger and all derived state. Operations are serialized
// by an internal mutex; the system assumes a single logical writer, the
// lock only protects against overlapping calls within this process.
type Tracker struct {
	mu sync.Mutex

	ledger   *ledger.Ledger
	store    storage.Store
	selector *strategy.Selector
	registry *ListenerRegistry
	mirror   RemoteMirror
	validate *validator.Validate
	logger   *logrus.Logger

	stats   models.BucketStatsSet
	history models.BettingHistory
	state   models.ModelState
}

// NewTracker wires a tracker over the given store. The mirror may be nil.
func NewTracker(store storage.Store, mirror RemoteMirror, logger *logrus.Logger) *Tracker {
	return &Tracker{
		ledger:   ledger.New(store, logger),
		store:    store,
		selector: strategy.NewSelector(),
		registry: NewListenerRegistry(),
		mirror:   mirror,
		validate: validator.New(),
		logger:   logger,
		stats:    models.NewBucketStatsSet(),
		state:    models.NewModelState(),
	}
}

// Load reads the ledger and restores derived state. Corrupt or missing
// derived blobs are repaired by a full rebuild; only a corrupt ledger blob
// is fatal.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ledger.Load(ctx); err != nil {
		return err
	}

	if err := t.loadDerived(ctx); err != nil {
		if errors.Is(err, storage.ErrCorrupt) || errors.Is(err, storage.ErrNotFound) {
			t.logger.WithError(err).Warn("Derived state unusable, rebuilding from ledger")
			return t.rebuildLocked(ctx)
		}
		return err
	}
	return nil
}

// Propose computes the prediction, recommendation, confidence, and stake
// for six odds against the current derived state. Pure with respect to the
// tracker: nothing is persisted.
func (t *Tracker) Propose(odds [models.ContenderCount]float64, mode models.StrategyMode) (Proposal, error) {
	t.mu.Lock()
	statsSet := t.stats
	state := t.state
	t.mu.Unlock()

	started := time.Now()
	proposal, err := Propose(odds, mode, statsSet, state)
	if err != nil {
		return Proposal{}, err
	}

	if proposal.Recommendation.Skip {
		metrics.RecordSkip(string(mode))
	}
	metrics.RecordPrediction(time.Since(started).Seconds())
	metrics.RecommendedStake.Set(proposal.Stake)

	return proposal, nil
}

// Propose is the pure composition of the engine, selector, and sizer over
// an explicit stats/model snapshot.
func Propose(odds [models.ContenderCount]float64, mode models.StrategyMode, statsSet models.BucketStatsSet, state models.ModelState) (Proposal, error) {
	prediction := engine.Predict(odds, statsSet, state)
	rec, err := strategy.NewSelector().Recommend(mode, odds, prediction.Adjusted, prediction.Edges)
	if err != nil {
		return Proposal{}, err
	}

	confidence := sizing.Grade(prediction.Buckets, statsSet, state)

	stake := 0.0
	breakdown := models.SignalBreakdown{}
	if !rec.Skip {
		stake = sizing.Stake(prediction.Edges[rec.Index], confidence, state)
		breakdown = prediction.Breakdown(rec.Index)
	}

	return Proposal{
		Prediction:     prediction,
		Recommendation: rec,
		Confidence:     confidence,
		Stake:          stake,
		Breakdown:      breakdown,
	}, nil
}

// LogEvent validates the input, recomputes the proposal the model would
// have made, settles profit and loss against the actual outcome, appends
// the record, rebuilds all derived state, and notifies listeners. A
// validation failure leaves no state behind.
func (t *Tracker) LogEvent(ctx context.Context, input EventInput) (*models.EventRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.validateInput(input); err != nil {
		metrics.RecordValidationFailure()
		return nil, err
	}

	var odds [models.ContenderCount]float64
	copy(odds[:], input.Odds)
	mode := models.StrategyMode(input.Mode)

	proposal, err := Propose(odds, mode, t.stats, t.state)
	if err != nil {
		return nil, err
	}

	rec := models.EventRecord{
		Odds:          odds,
		ImpliedProbs:  proposal.Prediction.Implied,
		Mode:          mode,
		AdjustedProbs: proposal.Prediction.Adjusted,
		Signals:       proposal.Breakdown,
		Recommended:   proposal.Recommendation.Index,
		Stake:         proposal.Stake,
		ActualFirst:   input.ActualFirst,
		ActualSecond:  input.ActualSecond,
		ActualThird:   input.ActualThird,
		Status:        models.EventStatusProposed,
	}
	rec.ProfitLoss = settle(&rec)

	if err := t.ledger.Append(ctx, rec); err != nil {
		return nil, err
	}
	metrics.RecordEventLogged(t.ledger.Len())

	if err := t.rebuildLocked(ctx); err != nil {
		return nil, err
	}

	appended := t.ledger.All()[t.ledger.Len()-1]
	appended.Status = models.EventStatusSettled
	t.notify(&appended, false)
	t.mirrorEvent(ctx, appended)

	return &appended, nil
}

// RebuildAll recomputes every derived blob from the ledger. Safe to call
// at any time; this is the recovery entry point after derived-blob
// corruption.
func (t *Tracker) RebuildAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rebuildLocked(ctx)
}

// UndoLast strips the most recent event and rebuilds. Fails without side
// effects on an empty ledger.
func (t *Tracker) UndoLast(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.ledger.UndoLast(ctx)
	if err != nil {
		return err
	}
	metrics.RecordUndo(t.ledger.Len())

	if err := t.rebuildLocked(ctx); err != nil {
		return err
	}

	t.notify(&removed, true)
	return nil
}

// Subscribe registers a settle listener and returns its unsubscribe
// function.
func (t *Tracker) Subscribe(fn Listener) func() {
	return t.registry.Subscribe(fn)
}

// History returns the current cumulative totals.
func (t *Tracker) History() models.BettingHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history
}

// BucketStats returns the current per-bucket aggregates.
func (t *Tracker) BucketStats() models.BucketStatsSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// ModelState returns the current model state.
func (t *Tracker) ModelState() models.ModelState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Records returns a snapshot of the full ledger.
func (t *Tracker) Records() []models.EventRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.All()
}

func (t *Tracker) rebuildLocked(ctx context.Context) error {
	started := time.Now()
	records := t.ledger.All()

	driftBefore := t.state.Drift.DriftDetected
	set, history, state := Refold(records, time.Now().UTC())

	if err := t.persistDerived(ctx, set, history, state); err != nil {
		return err
	}

	t.stats = set
	t.history = history
	t.state = state

	if state.Drift.DriftDetected && !driftBefore {
		metrics.RecordDrift()
		t.logger.WithFields(logrus.Fields{
			"drift_score":       state.Drift.DriftScore,
			"baseline_accuracy": state.Drift.BaselineAccuracy,
			"current_accuracy":  state.Drift.CurrentAccuracy,
		}).Warn("Model drift detected")
	}

	metrics.RecordRebuild(time.Since(started).Seconds())
	metrics.TotalProfit.Set(history.TotalProfit)
	metrics.CalibrationScalar.Set(state.Calibration)
	metrics.ModelAccuracy.Set(state.Accuracy)
	metrics.LedgerSize.Set(float64(len(records)))

	t.logger.WithFields(logrus.Fields{
		"records":     len(records),
		"roi":         history.ROI,
		"calibration": state.Calibration,
		"duration":    time.Since(started),
	}).Debug("Derived state rebuilt")

	return nil
}

func (t *Tracker) persistDerived(ctx context.Context, set models.BucketStatsSet, history models.BettingHistory, state models.ModelState) error {
	blobs := []struct {
		key   string
		value interface{}
	}{
		{storage.KeyBucketStats, set},
		{storage.KeyHistory, history},
		{storage.KeyModelState, state},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.value)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", b.key, err)
		}
		if err := t.store.Set(ctx, b.key, data); err != nil {
			return fmt.Errorf("failed to persist %s: %w", b.key, err)
		}
	}
	return nil
}

func (t *Tracker) loadDerived(ctx context.Context) error {
	if err := loadBlob(ctx, t.store, storage.KeyBucketStats, &t.stats); err != nil {
		return err
	}
	if err := loadBlob(ctx, t.store, storage.KeyHistory, &t.history); err != nil {
		return err
	}
	return loadBlob(ctx, t.store, storage.KeyModelState, &t.state)
}

func loadBlob(ctx context.Context, store storage.Store, key string, out interface{}) error {
	blob, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return &storage.CorruptionError{Key: key, Err: err}
	}
	return nil
}

func (t *Tracker) validateInput(input EventInput) error {
	if err := t.validate.Struct(input); err != nil {
		return models.NewValidationError("input", err.Error())
	}
	if input.ActualFirst == input.ActualSecond ||
		input.ActualFirst == input.ActualThird ||
		input.ActualSecond == input.ActualThird {
		return models.NewValidationError("finishing order", "positions must name distinct contenders")
	}
	return nil
}

func (t *Tracker) notify(rec *models.EventRecord, undone bool) {
	t.registry.Notify(Notification{
		Record:  rec,
		Undone:  undone,
		History: t.history,
		Stats:   t.stats,
		Model:   t.state,
	})
}

func (t *Tracker) mirrorEvent(ctx context.Context, rec models.EventRecord) {
	if t.mirror == nil {
		return
	}
	if err := t.mirror.LogEvent(ctx, rec); err != nil {
		metrics.RecordMirrorSync("error")
		t.logger.WithError(err).Warn("Failed to mirror event to remote ledger")
		return
	}
	metrics.RecordMirrorSync("ok")
}

// settle computes the realized profit or loss under the X-to-1 payout
// convention: a winning stake returns stake x (odds+1), so net profit is
// stake x odds; a losing stake is forfeit.
func settle(rec *models.EventRecord) float64 {
	if !rec.PlacedBet() {
		return 0
	}
	if rec.Recommended == rec.ActualFirst {
		return rec.Stake * rec.Odds[rec.Recommended]
	}
	return -rec.Stake
}
