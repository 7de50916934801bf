// Package maintenance runs scheduled background upkeep: a deep sweep of
// expired cache entries across every tier and, when the SQLite backend is
// active, a database vacuum.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"veridian-hq/callisto/pkg/config"
)

// Sweeper removes expired cache entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// Vacuumer reclaims storage space. Implemented by the SQLite store.
type Vacuumer interface {
	Vacuum(ctx context.Context) error
}

// Scheduler runs the maintenance jobs on a cron schedule.
type Scheduler struct {
	cfg      *config.MaintenanceConfig
	sweeper  Sweeper
	vacuumer Vacuumer
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a maintenance scheduler. vacuumer may be nil for
// backends with nothing to vacuum.
func NewScheduler(cfg *config.MaintenanceConfig, sweeper Sweeper, vacuumer Vacuumer) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		sweeper:  sweeper,
		vacuumer: vacuumer,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "maintenance"),
	}
}

// Start begins scheduled maintenance. If maintenance is disabled or no
// schedule is configured, it does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled || s.cfg.SweepSchedule == "" {
		s.logger.Info("maintenance scheduling disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.SweepSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.SweepSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
		s.runMaintenance(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("maintenance scheduler started", "schedule", s.cfg.SweepSchedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runMaintenance executes one maintenance cycle.
func (s *Scheduler) runMaintenance(ctx context.Context) {
	s.logger.Info("starting scheduled maintenance")

	removed := s.sweeper.Sweep()
	if removed > 0 {
		s.logger.Info("cache sweep completed", "removed_entries", removed)
	} else {
		s.logger.Debug("cache sweep completed, no entries removed")
	}

	if s.vacuumer != nil {
		if err := s.vacuumer.Vacuum(ctx); err != nil {
			s.logger.Error("store vacuum failed", "error", err)
		} else {
			s.logger.Debug("store vacuum completed")
		}
	}
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("maintenance scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled maintenance time, or nil.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
