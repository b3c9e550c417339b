package model

import (
	"context"
	"time"
)

// CompanyRepository is the storage contract for canonical companies.
type CompanyRepository interface {
	// GetByName matches case-insensitively on the canonical name.
	GetByName(ctx context.Context, name string) (*Company, error)
	GetByATSURL(ctx context.Context, atsURL string) (*Company, error)
	GetBySlug(ctx context.Context, slug string) (*Company, error)
	Create(ctx context.Context, c *Company) error
	// Update persists the given record. Callers are responsible for the
	// fill-only merge; Update writes whatever it is handed.
	Update(ctx context.Context, c *Company) error
	List(ctx context.Context) ([]Company, error)
}

// JobRepository is the storage contract for canonical jobs.
type JobRepository interface {
	GetByKey(ctx context.Context, source Provider, externalID string) (*Job, error)
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	// ListUnenriched returns jobs with no AI one-liner, oldest first.
	ListUnenriched(ctx context.Context, limit int) ([]Job, error)
	// ListUnknownLocation returns non-expired jobs whose location kind is
	// unknown, for the location-repair stage.
	ListUnknownLocation(ctx context.Context, limit int) ([]Job, error)
	// ExpireStale marks ATS-sourced jobs not seen since cutoff as expired
	// and returns how many rows changed. Expiry is one-directional.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// LedgerRepository tracks daily AI token usage.
type LedgerRepository interface {
	// Get returns the ledger row for the given UTC day, or a zeroed row
	// if the day has not been seen yet.
	Get(ctx context.Context, day string) (*RunLedger, error)
	// Add increments the day's counters, creating the row if needed.
	Add(ctx context.Context, day string, jobs, tokensIn, tokensOut int) error
}
