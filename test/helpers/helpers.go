package helpers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/service"
	"github.com/yourusername/hexabet/internal/storage"
)

// NewTestLogger returns a silenced logger for tests.
func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// NewTestTracker creates a loaded tracker over an in-memory store.
func NewTestTracker(t *testing.T) (*service.Tracker, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	tracker := service.NewTracker(store, nil, NewTestLogger())
	require.NoError(t, tracker.Load(context.Background()), "failed to load tracker state")
	return tracker, store
}

// EventFixture returns a valid event submission. The winner index selects
// which contender finished first; the remaining podium slots are filled
// with the lowest other indexes.
func EventFixture(winner int) service.EventInput {
	second, third := 0, 1
	if second == winner {
		second = 2
	}
	if third == winner || third == second {
		third = 3
		if third == second {
			third = 4
		}
	}
	return service.EventInput{
		Odds:         []float64{1.5, 3, 4.5, 8, 12, 25},
		Mode:         "balanced",
		ActualFirst:  winner,
		ActualSecond: second,
		ActualThird:  third,
	}
}

// LoadFixture loads test data from a JSON fixture file.
func LoadFixture(t *testing.T, filename string, target interface{}) {
	t.Helper()

	fixturePath := filepath.Join("test", "fixtures", filename)
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err, "failed to read fixture file: %s", filename)

	err = json.Unmarshal(data, target)
	require.NoError(t, err, "failed to unmarshal fixture: %s", filename)
}

// MirrorRecorder captures the requests a mock mirror endpoint receives.
type MirrorRecorder struct {
	mu     sync.Mutex
	events []models.EventRecord
}

// Events returns a snapshot of the received event records.
func (r *MirrorRecorder) Events() []models.EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventRecord, len(r.events))
	copy(out, r.events)
	return out
}

// MockMirrorServer creates a mock HTTP server standing in for the remote
// ledger-logging endpoint.
func MockMirrorServer(t *testing.T) (*httptest.Server, *MirrorRecorder) {
	t.Helper()

	recorder := &MirrorRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logEvent":
			var rec models.EventRecord
			if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			recorder.mu.Lock()
			recorder.events = append(recorder.events, rec)
			recorder.mu.Unlock()
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "logged"})

		case "/getHistory":
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(models.BettingHistory{})

		case "/getROI":
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"roi":      "12.50",
				"profit":   "5000",
				"invested": "40000",
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, recorder
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// CreateTestContext creates a context with a timeout for testing.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
