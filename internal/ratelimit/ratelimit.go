// Package ratelimit spaces out requests per upstream provider so boards
// hosted on a shared ATS are not hammered in lockstep.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// ProviderLimiter enforces a minimum delay between requests to boards on
// the same provider. Boards on different providers never block each other.
type ProviderLimiter struct {
	mu       sync.Mutex
	lastCall map[model.Provider]time.Time
	minDelay time.Duration
}

// NewProviderLimiter creates a limiter enforcing minDelay between
// consecutive requests to the same provider. All scrapers in one process
// should share the same instance.
func NewProviderLimiter(minDelay time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		lastCall: make(map[model.Provider]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given provider. Returns an error if the context is cancelled while
// waiting.
func (r *ProviderLimiter) Wait(ctx context.Context, provider model.Provider) error {
	r.mu.Lock()
	last, ok := r.lastCall[provider]
	now := time.Now()

	if !ok {
		r.lastCall[provider] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[provider] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", provider, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[provider] = time.Now()
	r.mu.Unlock()

	return nil
}
