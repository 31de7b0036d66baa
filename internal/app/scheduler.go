package app

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultSyncInterval is the period between scheduled cycles.
const DefaultSyncInterval = 30 * time.Second

// CycleRunner runs one reconciliation cycle. *Reconciler implements it.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Runner     CycleRunner
	Interval   time.Duration
	RunOnStart bool
	Logger     *slog.Logger
}

// Scheduler triggers reconciliation cycles on a fixed period.
// Overlapping ticks are skipped by the runner's busy guard.
type Scheduler struct {
	runner     CycleRunner
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger
}

// NewScheduler creates a scheduler. Runner is required.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Runner == nil {
		panic("app: SchedulerConfig.Runner is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:     cfg.Runner,
		interval:   interval,
		runOnStart: cfg.RunOnStart,
		logger:     logger.With(slog.String("component", "app.Scheduler")),
	}
}

// Run blocks, triggering cycles until ctx is done. It always returns nil
// once ctx is cancelled; cycle failures are logged and retried next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "sync scheduler started",
		slog.Duration("interval", s.interval),
		slog.Bool("run_on_start", s.runOnStart),
	)

	if s.runOnStart {
		s.trigger(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sync scheduler stopped")
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	_, err := s.runner.RunCycle(ctx)

	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.logger.DebugContext(ctx, "tick skipped, cycle still in progress")
	default:
		s.logger.DebugContext(ctx, "scheduled cycle failed, will retry next tick", slog.Any("error", err))
	}
}
