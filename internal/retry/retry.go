// Package retry provides bounded retry loops with pluggable backoff
// schedules. Retries are never unbounded.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Backoff computes the delay before the given retry attempt (1-based).
type Backoff func(attempt int) time.Duration

// Linear returns base×attempt delays (500ms, 1s, 1.5s, ...).
func Linear(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// ExponentialJitter returns base×2^(attempt-1) delays with ±30% jitter,
// capped at max.
func ExponentialJitter(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		delay := base
		for i := 1; i < attempt; i++ {
			delay *= 2
		}
		if delay > max {
			delay = max
		}
		jitter := float64(delay) * 0.3
		return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	}
}

// Do runs fn up to attempts times, sleeping per the backoff schedule between
// tries. Non-retryable errors abort immediately. An error carrying a
// Retry-After duration overrides the schedule.
func Do(ctx context.Context, attempts int, backoff Backoff, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := backoff(attempt)
		var httpErr *model.HTTPError
		if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > 0 {
			delay = httpErr.RetryAfter
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return lastErr
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as non-retryable regardless of its kind.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Retryable reports whether the error represents a transient failure worth
// retrying: 429 and 5xx are, other HTTP statuses are not, context
// cancellation never is, and anything else (network, DNS) is.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		return httpErr.StatusCode >= 500
	}

	return true
}
