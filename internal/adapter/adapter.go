// Package adapter translates per-provider wire formats into the canonical
// ScrapedJob shape. One adapter per ATS; a single bad record is logged and
// omitted, never fatal for its board.
package adapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ratelimit"
)

// Scraper fetches all postings for one board.
type Scraper interface {
	Scrape(ctx context.Context) ([]model.ScrapedJob, error)
}

// Dispatcher builds the right adapter for a provider and runs it.
type Dispatcher struct {
	client  *http.Client
	limiter *ratelimit.ProviderLimiter
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher sharing one HTTP client and one
// per-provider rate limiter across adapters. limiter may be nil.
func NewDispatcher(client *http.Client, limiter *ratelimit.ProviderLimiter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, limiter: limiter, logger: logger}
}

// Scrape runs the adapter for the given provider and board URL. An
// unsupported or missing provider, or an empty URL, returns an empty list
// immediately; callers must not read an empty list as proof the board was
// fetched.
func (d *Dispatcher) Scrape(ctx context.Context, provider model.Provider, atsURL string) ([]model.ScrapedJob, error) {
	if atsURL == "" {
		return nil, nil
	}

	var s Scraper
	switch provider {
	case model.ProviderGreenhouse:
		s = NewGreenhouse(atsURL, d.client, d.logger)
	case model.ProviderLever:
		s = NewLever(atsURL, d.client, d.logger)
	case model.ProviderAshby:
		s = NewAshby(atsURL, d.client, d.logger)
	case model.ProviderBoard:
		s = NewBoard(atsURL, d.logger)
	case model.ProviderWorkday:
		// Stub, no request made; skip the limiter.
		return NewWorkday(atsURL, d.logger).Scrape(ctx)
	default:
		d.logger.Warn("unsupported provider, skipping", "provider", provider, "url", atsURL)
		return nil, nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, provider); err != nil {
			return nil, err
		}
	}
	return s.Scrape(ctx)
}
