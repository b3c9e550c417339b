package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRunner struct {
	calls atomic.Int32
	mode  atomic.Value
	err   error
}

func (r *countingRunner) Run(_ context.Context, _ string, mode pipeline.Mode) error {
	r.calls.Add(1)
	r.mode.Store(mode)
	return r.err
}

func TestScheduler_ImmediateAndTickedRuns(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, runstatus.NewMemoryTracker(), pipeline.ModeBoards, "@every 100ms", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for runner.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs, got %d", runner.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() = %v, want nil on shutdown", err)
	}
	if got := runner.mode.Load(); got != pipeline.ModeBoards {
		t.Errorf("mode = %v, want boards", got)
	}
}

func TestScheduler_RunnerErrorDoesNotStopLoop(t *testing.T) {
	runner := &countingRunner{err: errors.New("stage failed")}
	s := New(runner, runstatus.NewMemoryTracker(), pipeline.ModeAll, "@every 100ms", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for runner.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected loop to keep firing, got %d runs", runner.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() = %v, want nil on shutdown", err)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(&countingRunner{}, runstatus.NewMemoryTracker(), pipeline.ModeAll, "every day at noon", discardLogger())

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
