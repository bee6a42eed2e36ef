// Package main provides the entry point for the hexabet API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/config"
	"github.com/yourusername/hexabet/internal/health"
	"github.com/yourusername/hexabet/internal/logger"
	"github.com/yourusername/hexabet/internal/metrics"
	"github.com/yourusername/hexabet/internal/mirror"
	"github.com/yourusername/hexabet/internal/scheduler"
	"github.com/yourusername/hexabet/internal/server"
	"github.com/yourusername/hexabet/internal/service"
	"github.com/yourusername/hexabet/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults(os.Getenv("HEXABET_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Hexabet tracker starting")

	metrics.InitRegistry()

	// Initialize blob store
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewPostgresStore(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to blob store")
	}
	defer store.Close()

	appLog.Info("Blob store connection established")

	// Initialize optional mirror client
	var remote service.RemoteMirror
	if cfg.Mirror.Enabled {
		remote = mirror.NewClient(mirror.Config{
			BaseURL:    cfg.Mirror.BaseURL,
			MaxRetries: cfg.Mirror.MaxRetries,
			RateLimit:  cfg.Mirror.RateLimit,
			Timeout:    time.Duration(cfg.Mirror.TimeoutSeconds) * time.Second,
		}, appLog)
		appLog.WithField("base_url", cfg.Mirror.BaseURL).Info("Mirror client initialized")
	}

	// Load the tracker state
	tracker := service.NewTracker(store, remote, appLog)
	if err := tracker.Load(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to load tracker state")
	}

	appLog.WithField("ledger_size", len(tracker.Records())).Info("Tracker state loaded")

	// Start health check server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        fmt.Sprintf("%d", cfg.Server.HealthPort),
		Logger:      appLog,
		Store:       store,
	})
	go func() {
		if err := healthServer.Start(ctx); err != nil {
			appLog.WithError(err).Error("Health server stopped")
		}
	}()

	// Start background sweeps
	sched := scheduler.NewScheduler(tracker, appLog)
	if cfg.Scheduler.ConsistencySweep != "" {
		if err := sched.ScheduleConsistencySweep(cfg.Scheduler.ConsistencySweep); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule consistency sweep")
		}
	}
	if cfg.Scheduler.MirrorSyncSweep != "" && remote != nil {
		if err := sched.ScheduleMirrorSync(cfg.Scheduler.MirrorSyncSweep, remote); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule mirror sync")
		}
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Start the API server
	apiServer := server.NewServer(cfg.Server, cfg.Metrics, tracker, appLog)
	go func() {
		if err := apiServer.Start(ctx); err != nil {
			appLog.WithError(err).Error("API server stopped")
			cancel()
		}
	}()

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"health_port": cfg.Server.HealthPort,
	}).Info("Hexabet tracker running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case <-ctx.Done():
	}

	// Graceful shutdown
	healthServer.SetReady(false)
	cancel()
	sched.Stop()

	if err := apiServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during health server shutdown")
	}

	appLog.Info("Hexabet tracker shut down successfully")
}
