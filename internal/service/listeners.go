package service

import (
	"sync"

	"github.com/yourusername/hexabet/internal/models"
)

// Notification is delivered to listeners after an event settles or the
// ledger is rewound. It carries value snapshots only, never live state.
type Notification struct {
	Record  *models.EventRecord
	Undone  bool
	History models.BettingHistory
	Stats   models.BucketStatsSet
	Model   models.ModelState
}

// Listener receives settle notifications.
type Listener func(Notification)

// ListenerRegistry is an explicit, lifecycle-owned callback registry. It
// holds no business data and supports unsubscribing from inside a callback.
type ListenerRegistry struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// NewListenerRegistry creates an empty registry.
func NewListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{listeners: make(map[int]Listener)}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (r *ListenerRegistry) Subscribe(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Notify delivers the notification to every current listener. The listener
// set is snapshotted first, so callbacks may unsubscribe themselves or
// others without corrupting the iteration.
func (r *ListenerRegistry) Notify(n Notification) {
	r.mu.Lock()
	snapshot := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		snapshot = append(snapshot, fn)
	}
	r.mu.Unlock()

	for _, fn := range snapshot {
		fn(n)
	}
}

// Len returns the number of registered listeners.
func (r *ListenerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
