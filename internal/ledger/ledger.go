// Package ledger implements the append-only store of immutable event
// records, the single source of truth for all derived state.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/storage"
)

// Ledger keeps the full record list in memory and mirrors every mutation
// to the store before acknowledging it. Single logical writer by contract.
type Ledger struct {
	store   storage.Store
	logger  *logrus.Logger
	records []models.EventRecord
}

// New creates a ledger over the given store. Call Load before use.
func New(store storage.Store, logger *logrus.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Load reads the persisted record list. A missing blob means an empty
// ledger; a blob that fails to parse is unrecoverable data loss and is
// surfaced as a CorruptionError.
func (l *Ledger) Load(ctx context.Context) error {
	blob, err := l.store.Get(ctx, storage.KeyLedger)
	if err == storage.ErrNotFound {
		l.records = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	var records []models.EventRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return &storage.CorruptionError{Key: storage.KeyLedger, Err: err}
	}

	l.records = records
	return nil
}

// Append validates the record, stamps identity and creation time if
// absent, and persists the extended list. The in-memory view only advances
// after the write is durable, so derived state never sees a half-written
// event.
func (l *Ledger) Append(ctx context.Context, rec models.EventRecord) error {
	if err := validate(&rec); err != nil {
		return err
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Status = models.EventStatusResolved

	next := append(l.copyRecords(), rec)
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.records = next

	l.logger.WithFields(logrus.Fields{
		"event_id": rec.ID,
		"mode":     rec.Mode,
		"records":  len(l.records),
	}).Debug("Event appended to ledger")

	return nil
}

// UndoLast removes the most recent record. This is the only deletion path
// and exists to correct operator mis-entry.
func (l *Ledger) UndoLast(ctx context.Context) (models.EventRecord, error) {
	if len(l.records) == 0 {
		return models.EventRecord{}, models.ErrEmptyLedger
	}

	removed := l.records[len(l.records)-1]
	next := l.copyRecords()[:len(l.records)-1]
	if err := l.persist(ctx, next); err != nil {
		return models.EventRecord{}, err
	}
	l.records = next

	l.logger.WithFields(logrus.Fields{
		"event_id": removed.ID,
		"records":  len(l.records),
	}).Info("Last event removed from ledger")

	return removed, nil
}

// All returns a read-only snapshot of the records in append order.
func (l *Ledger) All() []models.EventRecord {
	return l.copyRecords()
}

// Len returns the number of appended records.
func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) persist(ctx context.Context, records []models.EventRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize ledger: %w", err)
	}
	if err := l.store.Set(ctx, storage.KeyLedger, blob); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

func (l *Ledger) copyRecords() []models.EventRecord {
	out := make([]models.EventRecord, len(l.records))
	copy(out, l.records)
	return out
}

func validate(rec *models.EventRecord) error {
	for i, o := range rec.Odds {
		if o <= 0 {
			return models.NewValidationError(fmt.Sprintf("odds[%d]", i), "must be positive")
		}
	}
	for _, idx := range []int{rec.ActualFirst, rec.ActualSecond, rec.ActualThird} {
		if idx < 0 || idx >= models.ContenderCount {
			return models.NewValidationError("finishing order", "index out of range")
		}
	}
	if !rec.FinishersDistinct() {
		return models.NewValidationError("finishing order", "positions must name distinct contenders")
	}
	if rec.Recommended < models.SkipIndex || rec.Recommended >= models.ContenderCount {
		return models.NewValidationError("recommended", "index out of range")
	}
	if rec.Stake < 0 {
		return models.NewValidationError("stake", "must not be negative")
	}
	if !rec.Mode.Valid() {
		return models.NewValidationError("mode", "unknown strategy mode")
	}
	return nil
}
