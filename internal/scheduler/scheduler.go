package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"orderflow/internal/metrics"
)

// Runner is the automation entry point the scheduler drives.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler triggers automation passes on a fixed interval. Only one pass
// is ever in flight: a tick that arrives while a pass is still running is
// a no-op, logged as skipped.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is cancelled, firing a pass every interval. A pass
// already in flight when ctx is cancelled runs to completion.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping, waiting for in-flight pass")
			s.wg.Wait()
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick starts one pass in the background unless a previous pass is still
// in flight.
func (s *Scheduler) Tick() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous pass still running, skipping tick")
		metrics.AutomationPasses.WithLabelValues("skipped").Inc()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		// A started pass runs to completion even during shutdown.
		if err := s.runner.Run(context.Background()); err != nil {
			s.logger.Error("automation pass failed", slog.Any("error", err))
		}
	}()
}

// Wait blocks until any in-flight pass has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
