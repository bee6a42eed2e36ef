// Package scheduler runs periodic background jobs for the tracker.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/service"
)

// Scheduler manages scheduled maintenance jobs: the consistency sweep that
// rebuilds derived state from the ledger, and the optional mirror sync.
type Scheduler struct {
	cron            *cron.Cron
	tracker         *service.Tracker
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler.
func NewScheduler(tracker *service.Tracker, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		tracker:         tracker,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleConsistencySweep schedules a periodic full rebuild. The rebuild
// is idempotent; the sweep only changes anything when a derived blob no
// longer matches the ledger.
func (s *Scheduler) ScheduleConsistencySweep(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		s.logger.Debug("Starting scheduled consistency sweep")
		if err := s.tracker.RebuildAll(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled consistency sweep failed")
			return
		}
		s.logger.Debug("Scheduled consistency sweep completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled consistency sweep")

	return nil
}

// ScheduleMirrorSync schedules periodic re-push of the latest ledger state
// to the remote mirror, covering events whose synchronous mirror call
// failed.
func (s *Scheduler) ScheduleMirrorSync(cronExpression string, mirror service.RemoteMirror) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if mirror == nil {
		return fmt.Errorf("mirror sync requires a mirror client")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		records := s.tracker.Records()
		if len(records) == 0 {
			return
		}

		latest := records[len(records)-1]
		if err := mirror.LogEvent(ctx, latest); err != nil {
			s.logger.WithError(err).Warn("Scheduled mirror sync failed")
			return
		}
		s.logger.WithField("event_id", latest.ID).Debug("Scheduled mirror sync completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled mirror sync")

	return nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop halts job execution, waiting up to the graceful timeout for running
// jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is executing jobs.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
