// Package server exposes the tracker over a thin HTTP JSON API. The
// handlers relay data values to and from the service layer and hold no
// logic of their own.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/config"
	"github.com/yourusername/hexabet/internal/logger"
	"github.com/yourusername/hexabet/internal/metrics"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/service"
	"github.com/yourusername/hexabet/internal/storage"
)

// Server is the HTTP API for the wagering tracker.
type Server struct {
	cfg     config.ServerConfig
	tracker *service.Tracker
	hub     *Hub
	audit   *logger.AuditLogger
	log     *logrus.Logger
	http    *http.Server
}

// NewServer wires the router and websocket hub.
func NewServer(cfg config.ServerConfig, metricsCfg config.MetricsConfig, tracker *service.Tracker, log *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		tracker: tracker,
		hub:     NewHub(tracker, log),
		audit:   logger.NewAuditLogger(log),
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", s.handleLogEvent)
		r.Delete("/events/last", s.handleUndoLast)
		r.Get("/events", s.handleGetEvents)
		r.Get("/history", s.handleGetHistory)
		r.Get("/trust-weights", s.handleGetTrustWeights)
		r.Get("/roi", s.handleGetROI)
		r.Post("/predict", s.handlePredict)
		r.Get("/stream", s.hub.ServeHTTP)
	})

	if metricsCfg.Enabled {
		r.Handle(metricsCfg.Path, metrics.Handler())
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, primarily for tests that drive the
// API without binding a port.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("API server starting")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains connections and closes the websocket hub.
func (s *Server) Shutdown() error {
	s.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	var input service.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	rec, err := s.tracker.LogEvent(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.audit.LogEventAppended(rec.ID.String(), string(rec.Mode), rec.Recommended, rec.Stake, rec.ProfitLoss, rec.CreatedAt)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUndoLast(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.UndoLast(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}

	s.audit.LogEventUndone("latest", len(s.tracker.Records()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "undone"})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, s.tracker.Records())
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, s.tracker.History())
}

func (s *Server) handleGetTrustWeights(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buckets": s.tracker.BucketStats(),
		"model":   s.tracker.ModelState(),
	})
}

func (s *Server) handleGetROI(w http.ResponseWriter, r *http.Request) {
	_ = r
	history := s.tracker.History()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roi":      history.ROI,
		"profit":   history.TotalProfit,
		"invested": history.TotalInvested,
	})
}

// predictRequest carries odds and an optional mode for a what-if prediction.
type predictRequest struct {
	Odds []float64 `json:"odds"`
	Mode string    `json:"mode"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}
	if len(req.Odds) != models.ContenderCount {
		writeError(w, http.StatusBadRequest, fmt.Errorf("expected %d odds values, got %d", models.ContenderCount, len(req.Odds)))
		return
	}

	mode := models.StrategyMode(req.Mode)
	if req.Mode == "" {
		mode = models.StrategyBalanced
	}

	var odds [models.ContenderCount]float64
	copy(odds[:], req.Odds)

	proposal, err := s.tracker.Propose(odds, mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

func allowedOrigins(cfg config.ServerConfig) []string {
	if len(cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err) || errors.Is(err, models.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrEmptyLedger):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, storage.ErrQuotaExceeded):
		writeError(w, http.StatusInsufficientStorage, err)
	case errors.Is(err, storage.ErrCorrupt):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
