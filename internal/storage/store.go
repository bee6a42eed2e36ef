// Package storage provides the durable key-value store that persists the
// ledger and its derived blobs.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Persistence keys. The store only ever holds these four blobs.
const (
	KeyLedger      = "hexabet:ledger"
	KeyBucketStats = "hexabet:bucket_stats"
	KeyHistory     = "hexabet:betting_history"
	KeyModelState  = "hexabet:model_state"
)

// Custom errors
var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("key not found")

	// ErrCorrupt marks a persisted blob that failed to parse. Derived blobs
	// are recovered by a full rebuild from the ledger; a corrupt ledger blob
	// is unrecoverable and must be reported.
	ErrCorrupt = errors.New("stored blob is corrupt")

	// ErrQuotaExceeded marks a write that failed on capacity. The triggering
	// operation is not durable and must be retried or reported.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// CorruptionError wraps ErrCorrupt with the key whose blob failed to parse.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt blob at %s: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error { return ErrCorrupt }

// Store is the durable key-value interface. Values are opaque serialized
// blobs; the store performs no interpretation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}
