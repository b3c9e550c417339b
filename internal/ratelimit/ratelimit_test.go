package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestWait_SameProvider_EnforcesMinDelay(t *testing.T) {
	limiter := NewProviderLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, model.ProviderGreenhouse); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, model.ProviderGreenhouse); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentProviders_NoCrossBlocking(t *testing.T) {
	limiter := NewProviderLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, model.ProviderGreenhouse); err != nil {
		t.Fatalf("greenhouse wait: %v", err)
	}

	// An immediate call for a different provider should not block.
	start := time.Now()
	if err := limiter.Wait(ctx, model.ProviderLever); err != nil {
		t.Fatalf("lever wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected lever wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_CancelledContext(t *testing.T) {
	limiter := NewProviderLimiter(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, model.ProviderLever); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx, model.ProviderLever); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
