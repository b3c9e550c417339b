// Package pipeline sequences a full refresh run: scrape, apply-URL
// enrichment, AI enrichment, location repair. Stages run in order; a
// stage failure halts the run and records a typed stage error. Failures
// of individual boards inside the scrape stage are isolated and counted,
// never fatal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/company"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/enrich"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ingest"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/location"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/notifier"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/store"
)

// Mode selects which source classes a run scrapes.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeBoards Mode = "boards"
	ModeATS    Mode = "ats"
)

// ParseMode validates a mode string; empty means all.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeBoards:
		return ModeBoards, nil
	case ModeATS:
		return ModeATS, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, boards, or ats)", s)
	}
}

// Scraper runs one provider adapter.
type Scraper interface {
	Scrape(ctx context.Context, provider model.Provider, atsURL string) ([]model.ScrapedJob, error)
}

// Enricher is the AI enrichment batch.
type Enricher interface {
	Run(ctx context.Context) (enrich.Result, error)
}

const defaultConcurrency = 5

// Pipeline wires the stages together for one process.
type Pipeline struct {
	store    store.Store
	scraper  Scraper
	engine   *ingest.Engine
	enricher Enricher
	tracker  runstatus.Tracker
	notifier notifier.Notifier
	logger   *slog.Logger

	boardURLs   []string
	concurrency int
	repairLimit int
}

func New(st store.Store, scraper Scraper, engine *ingest.Engine, enricher Enricher,
	tracker runstatus.Tracker, boardURLs []string, concurrency int, logger *slog.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{
		store:       st,
		scraper:     scraper,
		engine:      engine,
		enricher:    enricher,
		tracker:     tracker,
		logger:      logger,
		boardURLs:   boardURLs,
		concurrency: concurrency,
		repairLimit: 500,
	}
}

// SetNotifier registers a notifier told about each finished run. Nil
// disables notifications.
func (p *Pipeline) SetNotifier(n notifier.Notifier) {
	p.notifier = n
}

// Run executes all stages for the run id, recording progress in the
// tracker. The returned error, if any, is a *model.StageError.
func (p *Pipeline) Run(ctx context.Context, runID string, mode Mode) error {
	var stats runstatus.Stats

	stages := []struct {
		stage model.Stage
		fn    func(context.Context, Mode, *runstatus.Stats) error
	}{
		{model.StageScrape, p.scrape},
		{model.StageEnrichURLs, p.enrichURLs},
		{model.StageEnrichAI, p.enrichAI},
		{model.StageRepairLocations, p.repairLocations},
	}

	for _, s := range stages {
		if err := p.tracker.SetStage(ctx, runID, s.stage); err != nil {
			p.logger.Warn("run tracker update failed", "run_id", runID, "error", err)
		}
		p.logger.Info("stage starting", "run_id", runID, "stage", s.stage)

		if err := s.fn(ctx, mode, &stats); err != nil {
			stageErr := &model.StageError{Stage: s.stage, Err: err}
			if ferr := p.tracker.Fail(ctx, runID, stats, stageErr); ferr != nil {
				p.logger.Warn("run tracker fail-update failed", "run_id", runID, "error", ferr)
			}
			p.logger.Error("stage failed, halting run",
				"run_id", runID, "stage", s.stage, "error", err)
			p.notify(ctx, runstatus.Run{
				ID: runID, Status: runstatus.StatusFailed, Stage: s.stage,
				Stats: stats, Error: stageErr.Error(),
			})
			return stageErr
		}
	}

	if err := p.tracker.Complete(ctx, runID, stats); err != nil {
		p.logger.Warn("run tracker complete-update failed", "run_id", runID, "error", err)
	}
	p.logger.Info("run complete",
		"run_id", runID, "jobs_added", stats.JobsAdded, "failures", stats.Failures)
	p.notify(ctx, runstatus.Run{ID: runID, Status: runstatus.StatusCompleted, Stats: stats})
	return nil
}

// notify reports the finished run; notifier failures are logged, never
// propagated to the caller.
func (p *Pipeline) notify(ctx context.Context, run runstatus.Run) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, run); err != nil {
		p.logger.Warn("run notification failed", "run_id", run.ID, "error", err)
	}
}

// scrape fans out over sources with bounded concurrency. A failing source
// is recorded and skipped; a storage error fails the stage.
func (p *Pipeline) scrape(ctx context.Context, mode Mode, stats *runstatus.Stats) error {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	if mode != ModeBoards {
		companies, err := p.store.Companies().List(ctx)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}
		for i := range companies {
			comp := companies[i]
			if comp.ATSURL == "" || comp.ATSProvider == model.ProviderBoard {
				continue
			}
			g.Go(func() error {
				jobs, err := p.scraper.Scrape(gctx, comp.ATSProvider, comp.ATSURL)
				if err != nil {
					p.logger.Warn("source scrape failed",
						"company", comp.Name, "url", comp.ATSURL, "error", err)
					mu.Lock()
					stats.Failures++
					stats.FailedSources = append(stats.FailedSources, comp.ATSURL)
					mu.Unlock()
					return nil
				}
				for _, sj := range jobs {
					created, err := p.engine.Ingest(gctx, sj, &comp)
					if err != nil {
						return err
					}
					if created {
						mu.Lock()
						stats.JobsAdded++
						mu.Unlock()
					}
				}
				return nil
			})
		}
	}

	if mode != ModeATS {
		for _, boardURL := range p.boardURLs {
			g.Go(func() error {
				jobs, err := p.scraper.Scrape(gctx, model.ProviderBoard, boardURL)
				if err != nil {
					p.logger.Warn("board scrape failed", "url", boardURL, "error", err)
					mu.Lock()
					stats.Failures++
					stats.FailedSources = append(stats.FailedSources, boardURL)
					mu.Unlock()
					return nil
				}
				added, err := p.engine.IngestBoard(gctx, jobs)
				if err != nil {
					return err
				}
				mu.Lock()
				stats.JobsAdded += added
				mu.Unlock()
				return nil
			})
		}
	}

	return g.Wait()
}

// enrichURLs backfills ATS metadata on companies discovered through
// boards: a stored ATS URL whose provider was never classified gets one
// inferred now, so the next run scrapes it directly.
func (p *Pipeline) enrichURLs(ctx context.Context, _ Mode, _ *runstatus.Stats) error {
	companies, err := p.store.Companies().List(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	for i := range companies {
		comp := companies[i]
		if comp.ATSProvider != "" || comp.ATSURL == "" {
			continue
		}
		provider, atsURL := company.InferATS(comp.ATSURL)
		if provider == "" {
			continue
		}
		comp.ATSProvider = provider
		if atsURL != "" {
			comp.ATSURL = atsURL
		}
		if err := p.store.Companies().Update(ctx, &comp); err != nil {
			return fmt.Errorf("update company %q: %w", comp.Name, err)
		}
		p.logger.Debug("classified company ats", "company", comp.Name, "provider", provider)
	}
	return nil
}

func (p *Pipeline) enrichAI(ctx context.Context, _ Mode, stats *runstatus.Stats) error {
	if p.enricher == nil {
		p.logger.Info("ai enrichment disabled, skipping stage")
		return nil
	}
	res, err := p.enricher.Run(ctx)
	if err != nil {
		return err
	}
	stats.Failures += res.Failed
	return nil
}

// repairLocations re-normalizes rows whose location kind is still
// unknown. Raw strings are kept on the row exactly for this: heuristic
// improvements apply retroactively without a re-scrape.
func (p *Pipeline) repairLocations(ctx context.Context, _ Mode, _ *runstatus.Stats) error {
	jobs, err := p.store.Jobs().ListUnknownLocation(ctx, p.repairLimit)
	if err != nil {
		return err
	}

	repaired := 0
	for i := range jobs {
		j := &jobs[i]
		loc := location.Normalize(j.RawLocation)
		if loc.Kind == model.LocationUnknown {
			continue
		}

		j.City = loc.City
		j.Region = loc.Region
		j.Country = loc.Country
		j.LocationKind = loc.Kind
		j.RemoteRegion = loc.RemoteRegion
		j.MultiLocation = loc.MultiLocation
		if err := p.store.Jobs().Update(ctx, j); err != nil {
			return fmt.Errorf("update job %s: %w", j.ID, err)
		}
		repaired++
	}
	if repaired > 0 {
		p.logger.Info("repaired job locations", "count", repaired)
	}
	return nil
}
