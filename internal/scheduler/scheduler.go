// Package scheduler runs periodic database maintenance using gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/neuromirror/backend/internal/config"
	"github.com/neuromirror/backend/internal/database"
)

// Scheduler owns the gocron instance and the maintenance job.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       config.MaintenanceConfig
	store     database.Store
	mu        sync.Mutex
	running   bool
}

// New creates a scheduler for the configured maintenance job.
func New(logger *slog.Logger, cfg config.MaintenanceConfig, store database.Store) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		store:     store,
	}, nil
}

// Start registers the maintenance job (when enabled) and starts ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if !s.cfg.Enabled {
		s.logger.Info("Maintenance job disabled")
		s.scheduler.Start()
		s.running = true
		return nil
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cfg.Schedule, true),
		gocron.NewTask(func(ctx context.Context) {
			s.logger.Info("Running scheduled maintenance")
			start := time.Now()
			if err := s.store.RunMaintenance(ctx); err != nil {
				s.logger.Error("Scheduled maintenance failed", "error", err)
			}
			s.logger.Info("Finished scheduled maintenance", "duration", time.Since(start))
		}, context.Background()),
		gocron.WithName("db_maintenance"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "schedule", s.cfg.Schedule)
	return nil
}

// Stop shuts down the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}
