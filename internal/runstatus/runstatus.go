// Package runstatus tracks pipeline runs by opaque id so the trigger API
// can report progress after launch.
package runstatus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Status is the externally visible lifecycle of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stats are the per-run counters reported by the status endpoint.
type Stats struct {
	JobsAdded     int      `json:"jobsAdded"`
	Failures      int      `json:"failures"`
	FailedSources []string `json:"failedSources"`
}

// Run is one pipeline execution.
type Run struct {
	ID         string      `json:"id"`
	Status     Status      `json:"status"`
	Stage      model.Stage `json:"stage,omitempty"`
	Stats      Stats       `json:"stats"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "run not found" }

// Tracker records run lifecycle transitions.
type Tracker interface {
	// Create registers a new running run and returns its id.
	Create(ctx context.Context) (string, error)
	// SetStage records which stage the run is currently in.
	SetStage(ctx context.Context, id string, stage model.Stage) error
	// Complete marks the run done with its final stats.
	Complete(ctx context.Context, id string, stats Stats) error
	// Fail marks the run failed with the stage diagnostic.
	Fail(ctx context.Context, id string, stats Stats, runErr error) error
	// Get returns the run, or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)
	// List returns all known runs, newest first.
	List(ctx context.Context) ([]Run, error)
}

// MemoryTracker keeps runs in a process-local map. Valid for the lifetime
// of one process only; a multi-instance deployment needs RedisTracker.
type MemoryTracker struct {
	mu   sync.RWMutex
	runs map[string]Run
	now  func() time.Time
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		runs: make(map[string]Run),
		now:  time.Now,
	}
}

func (t *MemoryTracker) Create(_ context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	t.runs[id] = Run{
		ID:        id,
		Status:    StatusRunning,
		StartedAt: t.now().UTC(),
	}
	return id, nil
}

func (t *MemoryTracker) SetStage(_ context.Context, id string, stage model.Stage) error {
	return t.mutate(id, func(r *Run) {
		r.Stage = stage
	})
}

func (t *MemoryTracker) Complete(_ context.Context, id string, stats Stats) error {
	return t.mutate(id, func(r *Run) {
		now := t.now().UTC()
		r.Status = StatusCompleted
		r.Stats = stats
		r.FinishedAt = &now
	})
}

func (t *MemoryTracker) Fail(_ context.Context, id string, stats Stats, runErr error) error {
	return t.mutate(id, func(r *Run) {
		now := t.now().UTC()
		r.Status = StatusFailed
		r.Stats = stats
		r.FinishedAt = &now
		if runErr != nil {
			r.Error = runErr.Error()
		}
	})
}

func (t *MemoryTracker) Get(_ context.Context, id string) (*Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (t *MemoryTracker) List(_ context.Context) ([]Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	runs := make([]Run, 0, len(t.runs))
	for _, r := range t.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

func (t *MemoryTracker) mutate(id string, fn func(*Run)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.runs[id]
	if !ok {
		return ErrNotFound
	}
	fn(&r)
	t.runs[id] = r
	return nil
}
