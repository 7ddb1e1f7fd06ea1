package findings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls how long runs are kept.
type RetentionConfig struct {
	// MaxAge is how long runs are retained. Zero disables pruning.
	MaxAge time.Duration

	// PruneSchedule is a cron expression for automatic pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables the scheduler;
	// manual pruning via `ganymede prune` still works.
	PruneSchedule string
}

// Pruner removes runs older than the retention window.
type Pruner struct {
	storage Storage
	config  *RetentionConfig
	logger  *slog.Logger
}

// NewPruner creates a pruner for the given storage backend.
func NewPruner(storage Storage, config *RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "findings.pruner"),
	}
}

// Prune deletes runs older than the retention window and returns the number
// removed. With MaxAge zero it is a no-op.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.config.MaxAge <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-p.config.MaxAge)
	removed, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune failed: %w", err)
	}

	if removed > 0 {
		p.logger.Info("pruned expired runs",
			"removed", removed,
			"cutoff", cutoff,
		)
	}
	return removed, nil
}

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "findings.scheduler"),
	}
}

// Start begins scheduled pruning based on the configured cron expression.
// With an empty PruneSchedule the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.pruner.Prune(ctx); err != nil {
			s.logger.Error("scheduled prune failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler, waiting for an in-flight prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}
