package runstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// DefaultTTL is how long finished run records stay readable.
const DefaultTTL = 24 * time.Hour

// RedisTracker stores runs as JSON values with a TTL, so status survives
// process restarts and is shared across instances.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisTracker parses redisURL, verifies connectivity, and returns the
// tracker.
func NewRedisTracker(ctx context.Context, redisURL string, ttl time.Duration) (*RedisTracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{client: client, ttl: ttl, now: time.Now}, nil
}

func runKey(id string) string {
	return "pipeline:run:" + id
}

func (t *RedisTracker) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	r := Run{
		ID:        id,
		Status:    StatusRunning,
		StartedAt: t.now().UTC(),
	}
	if err := t.set(ctx, &r); err != nil {
		return "", err
	}
	return id, nil
}

func (t *RedisTracker) SetStage(ctx context.Context, id string, stage model.Stage) error {
	return t.mutate(ctx, id, func(r *Run) {
		r.Stage = stage
	})
}

func (t *RedisTracker) Complete(ctx context.Context, id string, stats Stats) error {
	return t.mutate(ctx, id, func(r *Run) {
		now := t.now().UTC()
		r.Status = StatusCompleted
		r.Stats = stats
		r.FinishedAt = &now
	})
}

func (t *RedisTracker) Fail(ctx context.Context, id string, stats Stats, runErr error) error {
	return t.mutate(ctx, id, func(r *Run) {
		now := t.now().UTC()
		r.Status = StatusFailed
		r.Stats = stats
		r.FinishedAt = &now
		if runErr != nil {
			r.Error = runErr.Error()
		}
	})
}

func (t *RedisTracker) Get(ctx context.Context, id string) (*Run, error) {
	raw, err := t.client.Get(ctx, runKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var r Run
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &r, nil
}

// List scans for run keys and loads them in one MGET. Runs that expire
// between the scan and the read are skipped.
func (t *RedisTracker) List(ctx context.Context) ([]Run, error) {
	var keys []string
	iter := t.client.Scan(ctx, 0, runKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}

	runs := make([]Run, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var r Run
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

func (t *RedisTracker) mutate(ctx context.Context, id string, fn func(*Run)) error {
	r, err := t.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(r)
	return t.set(ctx, r)
}

func (t *RedisTracker) set(ctx context.Context, r *Run) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", r.ID, err)
	}
	if err := t.client.Set(ctx, runKey(r.ID), raw, t.ttl).Err(); err != nil {
		return fmt.Errorf("store run %s: %w", r.ID, err)
	}
	return nil
}
