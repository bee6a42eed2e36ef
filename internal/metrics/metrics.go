// Package metrics provides the centralized Prometheus registry for the
// wagering tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EventsLoggedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "events_logged_total",
		Help:      "Total number of events appended to the ledger",
	})
	EventsUndoneTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "events_undone_total",
		Help:      "Total number of undo-last operations",
	})
	RebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "rebuilds_total",
		Help:      "Total number of full derived-state rebuilds",
	})
	PredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "predictions_total",
		Help:      "Total number of prediction requests",
	})
	SkipsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "skips_total",
		Help:      "Total number of skip recommendations by strategy mode",
	}, []string{"mode"})
	DriftFlagsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "drift_flags_total",
		Help:      "Total number of drift detections",
	})
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "validation_failures_total",
		Help:      "Total number of rejected event submissions",
	})
	MirrorSyncsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hexabet",
		Name:      "mirror_syncs_total",
		Help:      "Total number of remote mirror calls by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	LedgerSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hexabet",
		Name:      "ledger_size",
		Help:      "Number of records currently in the ledger",
	})
	TotalProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hexabet",
		Name:      "total_profit",
		Help:      "Cumulative profit and loss across the ledger",
	})
	CalibrationScalar = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hexabet",
		Name:      "calibration_scalar",
		Help:      "Current probability calibration scalar",
	})
	ModelAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hexabet",
		Name:      "model_accuracy",
		Help:      "Share of events where the recommendation finished first",
	})
	RecommendedStake = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hexabet",
		Name:      "recommended_stake",
		Help:      "Most recent stake recommendation",
	})
)

// Histogram metrics
var (
	RebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hexabet",
		Name:      "rebuild_duration_seconds",
		Help:      "Duration of full derived-state rebuilds in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hexabet",
		Name:      "prediction_duration_seconds",
		Help:      "Duration of prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(EventsLoggedTotal)
		registry.MustRegister(EventsUndoneTotal)
		registry.MustRegister(RebuildsTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(SkipsTotal)
		registry.MustRegister(DriftFlagsTotal)
		registry.MustRegister(ValidationFailuresTotal)
		registry.MustRegister(MirrorSyncsTotal)

		// Register gauge metrics
		registry.MustRegister(LedgerSize)
		registry.MustRegister(TotalProfit)
		registry.MustRegister(CalibrationScalar)
		registry.MustRegister(ModelAccuracy)
		registry.MustRegister(RecommendedStake)

		// Register histogram metrics
		registry.MustRegister(RebuildDuration)
		registry.MustRegister(PredictionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEventLogged records a successful ledger append.
func RecordEventLogged(ledgerSize int) {
	EventsLoggedTotal.Inc()
	LedgerSize.Set(float64(ledgerSize))
}

// RecordUndo records an undo-last operation.
func RecordUndo(ledgerSize int) {
	EventsUndoneTotal.Inc()
	LedgerSize.Set(float64(ledgerSize))
}

// RecordRebuild records a completed rebuild.
func RecordRebuild(durationSeconds float64) {
	RebuildsTotal.Inc()
	RebuildDuration.Observe(durationSeconds)
}

// RecordPrediction records a prediction request.
func RecordPrediction(durationSeconds float64) {
	PredictionsTotal.Inc()
	PredictionDuration.Observe(durationSeconds)
}

// RecordSkip records a skip recommendation for a strategy mode.
func RecordSkip(mode string) {
	SkipsTotal.WithLabelValues(mode).Inc()
}

// RecordDrift records a drift detection.
func RecordDrift() {
	DriftFlagsTotal.Inc()
}

// RecordValidationFailure records a rejected event submission.
func RecordValidationFailure() {
	ValidationFailuresTotal.Inc()
}

// RecordMirrorSync records a remote mirror call outcome.
func RecordMirrorSync(outcome string) {
	MirrorSyncsTotal.WithLabelValues(outcome).Inc()
}
