// Package ingest merges scraped postings into the canonical job catalog.
// Ingestion is at-least-once with exactly-once effective state: re-running
// the same input only touches timestamps.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/company"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/location"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/salary"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/store"
)

// DefaultFreshnessWindow is how long an ATS-sourced row may go unseen
// before the expiry sweep marks it expired.
const DefaultFreshnessWindow = 30 * 24 * time.Hour

// Engine upserts scraped jobs. Normalizers run here so every stored row
// carries normalized location and salary fields regardless of which
// adapter produced it.
type Engine struct {
	store    store.Store
	resolver *company.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(st store.Store, resolver *company.Resolver, logger *slog.Logger) *Engine {
	return &Engine{
		store:    st,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest upserts one scraped posting for an already-resolved company.
// The natural key is (Source, ExternalID); board rows without a stable id
// arrive with the apply URL as ExternalID.
func (e *Engine) Ingest(ctx context.Context, sj model.ScrapedJob, comp *model.Company) (created bool, err error) {
	if sj.ExternalID == "" || sj.Title == "" {
		return false, fmt.Errorf("scraped job missing external id or title")
	}

	existing, err := e.store.Jobs().GetByKey(ctx, sj.Source, sj.ExternalID)
	if err != nil {
		return false, fmt.Errorf("lookup job %s/%s: %w", sj.Source, sj.ExternalID, err)
	}

	now := e.now().UTC()
	incoming := e.build(sj, comp, now)

	if existing == nil {
		incoming.ID = uuid.NewString()
		incoming.CreatedAt = now
		if err := e.store.Jobs().Create(ctx, &incoming); err != nil {
			return false, fmt.Errorf("create job %s/%s: %w", sj.Source, sj.ExternalID, err)
		}
		return true, nil
	}

	merged := merge(*existing, incoming, now)
	if err := e.store.Jobs().Update(ctx, &merged); err != nil {
		return false, fmt.Errorf("update job %s/%s: %w", sj.Source, sj.ExternalID, err)
	}
	return false, nil
}

// build assembles the canonical row from one scraped posting, running the
// location and salary normalizers.
func (e *Engine) build(sj model.ScrapedJob, comp *model.Company, now time.Time) model.Job {
	loc := location.Normalize(sj.RawLocation)
	sal := salary.Parse(sj.RawSalary)

	j := model.Job{
		Title:       sj.Title,
		URL:         sj.URL,
		ApplyURL:    sj.ApplyURL,
		Description: sj.RawDescription,
		Source:      sj.Source,
		ExternalID:  sj.ExternalID,

		RawLocation:   sj.RawLocation,
		City:          loc.City,
		Region:        loc.Region,
		Country:       loc.Country,
		LocationKind:  loc.Kind,
		RemoteRegion:  loc.RemoteRegion,
		MultiLocation: loc.MultiLocation,

		SalaryMin:        sal.Min,
		SalaryMax:        sal.Max,
		Currency:         sal.Currency,
		SalaryInterval:   sal.Interval,
		AnnualMin:        sal.AnnualMin,
		AnnualMax:        sal.AnnualMax,
		SalaryConfidence: sal.Confidence,
		SalaryReason:     sal.Reason,

		UpdatedAt:  now,
		LastSeenAt: now,
	}
	if comp != nil {
		j.CompanyID = comp.ID
	}
	return j
}

// merge overlays the freshly scraped fields on the stored row while
// preserving everything ingestion does not own: identity, AI enrichment,
// and the one-way expiry flag. A posting seen again is live, so expiry is
// cleared only by never having been set.
func merge(existing, incoming model.Job, now time.Time) model.Job {
	out := incoming
	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt
	out.IsExpired = existing.IsExpired

	if out.CompanyID == "" {
		out.CompanyID = existing.CompanyID
	}

	out.AIOneLiner = existing.AIOneLiner
	out.AISnippet = existing.AISnippet
	out.AIBullets = existing.AIBullets
	out.EnrichedAt = existing.EnrichedAt

	out.UpdatedAt = now
	out.LastSeenAt = now
	return out
}

// IngestBoard resolves companies from raw board-supplied names and ingests
// each posting. Sanitizer-rejected rows are skipped silently; a storage
// error aborts the batch.
func (e *Engine) IngestBoard(ctx context.Context, jobs []model.ScrapedJob) (added int, err error) {
	for _, sj := range jobs {
		comp, err := e.resolver.Resolve(ctx, company.Candidate{
			RawName:  sj.CompanyName,
			Source:   sj.Source,
			ApplyURL: sj.ApplyURL,
		})
		if err != nil {
			return added, fmt.Errorf("resolve company %q: %w", sj.CompanyName, err)
		}
		if comp == nil {
			e.logger.Debug("skipping job with unusable company name",
				"company", sj.CompanyName, "title", sj.Title)
			continue
		}

		created, err := e.Ingest(ctx, sj, comp)
		if err != nil {
			return added, err
		}
		if created {
			added++
		}
	}
	return added, nil
}

// ExpireStale marks ATS-sourced jobs unseen for longer than window as
// expired and returns the count. Board-sourced rows are excluded: boards
// drop postings aggressively and absence there is weak evidence.
func (e *Engine) ExpireStale(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	cutoff := e.now().UTC().Add(-window)
	n, err := e.store.Jobs().ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale jobs: %w", err)
	}
	if n > 0 {
		e.logger.Info("expired stale jobs", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
