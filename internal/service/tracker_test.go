package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/storage"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestTracker(t *testing.T) (*Tracker, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	tracker := NewTracker(store, nil, testLogger())
	require.NoError(t, tracker.Load(context.Background()))
	return tracker, store
}

func validInput() EventInput {
	return EventInput{
		Odds:         []float64{1.5, 3, 4.5, 8, 12, 25},
		Mode:         "safe",
		ActualFirst:  0,
		ActualSecond: 1,
		ActualThird:  2,
	}
}

func TestLogEventSettlesAndRebuilds(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	rec, err := tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusSettled, rec.Status)
	assert.Equal(t, models.StrategySafe, rec.Mode)
	assert.False(t, rec.CreatedAt.IsZero())

	// Safe mode on a fresh model picks the shortest odds, which won here.
	// With no history there is no edge, so no money goes down.
	require.Equal(t, 0, rec.Recommended)
	assert.Zero(t, rec.Stake)
	assert.Zero(t, rec.ProfitLoss)

	history := tracker.History()
	assert.Equal(t, 1, history.TotalRaces)
	assert.Equal(t, 1, history.Wins)
	assert.Zero(t, history.TotalInvested)

	state := tracker.ModelState()
	assert.Equal(t, 1, state.ProcessedEvents)
	assert.InDelta(t, 1.0, state.Accuracy, 1e-9)
	assert.InDelta(t, 0.01, state.ConfidenceScale, 1e-9)
}

func TestLogEventMissedRecommendation(t *testing.T) {
	tracker, _ := newTestTracker(t)

	input := validInput()
	input.ActualFirst = 5
	input.ActualSecond = 4
	input.ActualThird = 3

	rec, err := tracker.LogEvent(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, 0, rec.Recommended)
	assert.Zero(t, tracker.History().Wins)
	assert.InDelta(t, 0.0, tracker.ModelState().Accuracy, 1e-9)
}

func TestLogEventValidationLeavesNoState(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*EventInput)
	}{
		{"wrong odds count", func(in *EventInput) { in.Odds = []float64{1, 2, 3} }},
		{"non-positive odds", func(in *EventInput) { in.Odds[4] = 0 }},
		{"unknown mode", func(in *EventInput) { in.Mode = "reckless" }},
		{"finisher out of range", func(in *EventInput) { in.ActualThird = 9 }},
		{"duplicate finishers", func(in *EventInput) { in.ActualSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := tracker.LogEvent(ctx, input)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Empty(t, tracker.Records())
			assert.Zero(t, tracker.History().TotalRaces)
		})
	}
}

func TestRebuildAllIsIdempotent(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	inputs := []EventInput{validInput(), validInput(), validInput()}
	inputs[1].Mode = "balanced"
	inputs[2].ActualFirst = 3
	inputs[2].ActualSecond = 0
	inputs[2].ActualThird = 1

	for _, in := range inputs {
		_, err := tracker.LogEvent(ctx, in)
		require.NoError(t, err)
	}

	statsBefore := tracker.BucketStats()
	historyBefore := tracker.History()
	stateBefore := tracker.ModelState()

	require.NoError(t, tracker.RebuildAll(ctx))
	require.NoError(t, tracker.RebuildAll(ctx))

	assert.Equal(t, statsBefore, tracker.BucketStats())
	assert.Equal(t, historyBefore, tracker.History())

	stateAfter := tracker.ModelState()
	assert.Equal(t, stateBefore.Weights, stateAfter.Weights)
	assert.InDelta(t, stateBefore.Calibration, stateAfter.Calibration, 1e-12)
	assert.Equal(t, stateBefore.ProcessedEvents, stateAfter.ProcessedEvents)
	assert.InDelta(t, stateBefore.Accuracy, stateAfter.Accuracy, 1e-12)
}

func TestLoadRecoversFromCorruptDerivedBlobs(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	seed := NewTracker(store, nil, testLogger())
	require.NoError(t, seed.Load(ctx))
	_, err := seed.LogEvent(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.KeyBucketStats, []byte("garbage")))
	require.NoError(t, store.Set(ctx, storage.KeyModelState, []byte("{broken")))

	recovered := NewTracker(store, nil, testLogger())
	require.NoError(t, recovered.Load(ctx))

	assert.Equal(t, seed.History(), recovered.History())
	assert.Equal(t, seed.BucketStats(), recovered.BucketStats())
	assert.Equal(t, seed.ModelState().Weights, recovered.ModelState().Weights)
}

func TestUndoLast(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	assert.ErrorIs(t, tracker.UndoLast(ctx), models.ErrEmptyLedger)

	_, err := tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)
	_, err = tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, tracker.UndoLast(ctx))
	assert.Len(t, tracker.Records(), 1)
	assert.Equal(t, 1, tracker.History().TotalRaces)
	assert.Equal(t, 1, tracker.ModelState().ProcessedEvents)
}

func TestSubscribeAndNotify(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	var got []Notification
	unsubscribe := tracker.Subscribe(func(n Notification) {
		got = append(got, n)
	})

	_, err := tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Undone)
	assert.Equal(t, models.EventStatusSettled, got[0].Record.Status)
	assert.Equal(t, 1, got[0].History.TotalRaces)

	require.NoError(t, tracker.UndoLast(ctx))
	require.Len(t, got, 2)
	assert.True(t, got[1].Undone)
	assert.Equal(t, 0, got[1].History.TotalRaces)

	unsubscribe()
	_, err = tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)
	assert.Len(t, got, 2, "unsubscribed listener must not fire")
}

func TestNotifyUnsubscribeDuringCallback(t *testing.T) {
	registry := NewListenerRegistry()

	calls := 0
	var unsubscribe func()
	unsubscribe = registry.Subscribe(func(Notification) {
		calls++
		unsubscribe()
	})

	registry.Notify(Notification{})
	registry.Notify(Notification{})

	assert.Equal(t, 1, calls)
	assert.Zero(t, registry.Len())
}

type failingMirror struct {
	calls int
}

func (m *failingMirror) LogEvent(ctx context.Context, rec models.EventRecord) error {
	m.calls++
	return errors.New("remote unavailable")
}

func TestMirrorFailureDoesNotBlockLogging(t *testing.T) {
	store := storage.NewMemoryStore()
	remote := &failingMirror{}
	tracker := NewTracker(store, remote, testLogger())
	ctx := context.Background()
	require.NoError(t, tracker.Load(ctx))

	rec, err := tracker.LogEvent(ctx, validInput())
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, 1, remote.calls)
	assert.Len(t, tracker.Records(), 1)
}

func TestRefoldDeterministic(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := tracker.LogEvent(ctx, validInput())
		require.NoError(t, err)
	}

	records := tracker.Records()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	setA, historyA, stateA := Refold(records, now)
	setB, historyB, stateB := Refold(records, now)

	assert.Equal(t, setA, setB)
	assert.Equal(t, historyA, historyB)
	assert.Equal(t, stateA, stateB)
}

func TestProposeSkipHasNoStake(t *testing.T) {
	tracker, _ := newTestTracker(t)

	// Aggressive mode needs a longshot edge; a fresh model has no edges at
	// all, so the only possible outcome is a skip.
	proposal, err := tracker.Propose([models.ContenderCount]float64{1.5, 3, 4.5, 8, 12, 25}, models.StrategyAggressive)
	require.NoError(t, err)

	assert.True(t, proposal.Recommendation.Skip)
	assert.Equal(t, models.SkipIndex, proposal.Recommendation.Index)
	assert.Zero(t, proposal.Stake)
	assert.Equal(t, models.SignalBreakdown{}, proposal.Breakdown)
}

func TestProposeInvalidMode(t *testing.T) {
	tracker, _ := newTestTracker(t)

	_, err := tracker.Propose([models.ContenderCount]float64{1.5, 3, 4.5, 8, 12, 25}, "reckless")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidMode)
}
