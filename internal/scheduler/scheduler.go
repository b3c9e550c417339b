// Package scheduler fires pipeline runs on a cron schedule. One run
// executes immediately on start so a fresh deployment does not wait for
// the first tick; overlapping runs are skipped, never queued.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

// Runner starts one pipeline run under the given run id.
type Runner interface {
	Run(ctx context.Context, runID string, mode pipeline.Mode) error
}

// Scheduler wraps robfig/cron around a pipeline runner.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	tracker runstatus.Tracker
	mode    pipeline.Mode
	spec    string
	logger  *slog.Logger
}

// New creates a scheduler that fires the pipeline on the given cron spec,
// e.g. "@every 6h" or "0 3 * * *".
func New(runner Runner, tracker runstatus.Tracker, mode pipeline.Mode, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		runner:  runner,
		tracker: tracker,
		mode:    mode,
		spec:    spec,
		logger:  logger,
	}
}

// Run registers the cron entry, fires one immediate run, then blocks until
// ctx is cancelled. It returns nil on graceful shutdown and waits for an
// in-flight run to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.logger.Info("scheduler starting", "schedule", s.spec, "mode", s.mode)
	s.fire(ctx)
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info("scheduler shutting down")
	<-s.cron.Stop().Done()
	return nil
}

// fire creates a tracked run and executes the pipeline. Pipeline errors
// are already recorded in the tracker; the scheduler only logs them.
func (s *Scheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runID, err := s.tracker.Create(ctx)
	if err != nil {
		s.logger.Error("scheduled run not started", "error", err)
		return
	}

	s.logger.Info("scheduled run starting", "run_id", runID)
	if err := s.runner.Run(ctx, runID, s.mode); err != nil {
		s.logger.Error("scheduled run failed", "run_id", runID, "error", err)
	}
}
