package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests and for ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// Quota caps the total stored bytes when positive, so quota failures can
	// be exercised without a real backend.
	Quota int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the stored blob or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Set stores a copy of the blob, enforcing the optional quota.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Quota > 0 {
		total := len(value)
		for k, v := range s.blobs {
			if k != key {
				total += len(v)
			}
		}
		if total > s.Quota {
			return ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.blobs[key] = stored
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	_ = ctx
	return nil
}
