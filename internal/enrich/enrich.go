// Package enrich runs the AI enrichment batch: it selects jobs without a
// summary, generates one per job through a text-generation provider, and
// accounts every token against a daily ledger with a hard cap.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ai"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/retry"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/store"
)

const (
	attempts    = 4
	backoffBase = 500 * time.Millisecond
	backoffMax  = 8 * time.Second

	// DefaultRunCap bounds how many jobs one run may touch.
	DefaultRunCap = 200
	// DefaultDailyTokenCap bounds input+output tokens per UTC day.
	DefaultDailyTokenCap = 500_000
)

// Result summarizes one batch run.
type Result struct {
	Enriched int
	Failed   int
	// CapReached is set when the run exited early on the token cap.
	CapReached bool
}

// Batch enriches un-summarized jobs under the daily token budget.
type Batch struct {
	store     store.Store
	generator ai.TextGenerator
	validate  *validator.Validate
	logger    *slog.Logger

	runCap        int
	dailyTokenCap int
	now           func() time.Time
}

func NewBatch(st store.Store, gen ai.TextGenerator, runCap, dailyTokenCap int, logger *slog.Logger) *Batch {
	if runCap <= 0 {
		runCap = DefaultRunCap
	}
	if dailyTokenCap <= 0 {
		dailyTokenCap = DefaultDailyTokenCap
	}
	return &Batch{
		store:         st,
		generator:     gen,
		validate:      validator.New(),
		logger:        logger,
		runCap:        runCap,
		dailyTokenCap: dailyTokenCap,
		now:           time.Now,
	}
}

// Run processes up to the run cap of un-enriched jobs. The ledger is
// consulted before every job, not once per run: once the day's tokens
// reach the cap the run exits cleanly, leaving the rest for a future run.
// A job that fails all its attempts is logged and skipped.
func (b *Batch) Run(ctx context.Context) (Result, error) {
	var res Result

	jobs, err := b.store.Jobs().ListUnenriched(ctx, b.runCap)
	if err != nil {
		return res, fmt.Errorf("list unenriched jobs: %w", err)
	}
	if len(jobs) == 0 {
		b.logger.Info("no jobs to enrich")
		return res, nil
	}

	companyNames, err := b.companyNames(ctx)
	if err != nil {
		return res, err
	}

	for i := range jobs {
		job := &jobs[i]

		day := b.day()
		led, err := b.store.Ledger().Get(ctx, day)
		if err != nil {
			return res, fmt.Errorf("read ledger for %s: %w", day, err)
		}
		if led.TokensIn+led.TokensOut >= b.dailyTokenCap {
			b.logger.Info("daily token cap reached, stopping",
				"day", day, "tokens", led.TokensIn+led.TokensOut, "cap", b.dailyTokenCap)
			res.CapReached = true
			return res, nil
		}

		enrichment, usage, err := b.enrichOne(ctx, job, companyNames[job.CompanyID])
		if usage.TokensIn+usage.TokensOut > 0 {
			// Tokens were spent even if the job ultimately failed.
			processed := 0
			if err == nil {
				processed = 1
			}
			if lerr := b.store.Ledger().Add(ctx, day, processed, usage.TokensIn, usage.TokensOut); lerr != nil {
				return res, fmt.Errorf("record ledger for %s: %w", day, lerr)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			b.logger.Warn("enrichment failed, skipping job",
				"job_id", job.ID, "title", job.Title, "error", err)
			res.Failed++
			continue
		}

		if err := b.persist(ctx, job, enrichment); err != nil {
			return res, err
		}
		res.Enriched++
	}

	b.logger.Info("enrichment run complete", "enriched", res.Enriched, "failed", res.Failed)
	return res, nil
}

// enrichOne generates and validates one summary, retrying transient and
// invalid-output failures. Returned usage covers all attempts.
func (b *Batch) enrichOne(ctx context.Context, job *model.Job, companyName string) (model.Enrichment, model.Usage, error) {
	prompt, err := b.prompt(job, companyName)
	if err != nil {
		return model.Enrichment{}, model.Usage{}, err
	}

	var (
		enrichment model.Enrichment
		total      model.Usage
	)
	err = retry.Do(ctx, attempts, retry.ExponentialJitter(backoffBase, backoffMax), func() error {
		raw, usage, genErr := b.generator.Generate(ctx, prompt)
		total.TokensIn += usage.TokensIn
		total.TokensOut += usage.TokensOut
		if genErr != nil {
			return genErr
		}

		var e model.Enrichment
		if decErr := json.Unmarshal([]byte(raw), &e); decErr != nil {
			// Invalid output is retried like a transient failure, never
			// stored as partial data.
			return fmt.Errorf("decode enrichment: %w", decErr)
		}
		if valErr := b.validate.Struct(e); valErr != nil {
			return fmt.Errorf("enrichment out of bounds: %w", valErr)
		}

		enrichment = e
		return nil
	})
	return enrichment, total, err
}

func (b *Batch) prompt(job *model.Job, companyName string) (string, error) {
	if companyName == "" {
		companyName = "the company"
	}
	var buf bytes.Buffer
	err := ai.EnrichmentTemplate.Execute(&buf, struct {
		Title       string
		Company     string
		Description string
	}{
		Title:       job.Title,
		Company:     companyName,
		Description: job.Description,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func (b *Batch) persist(ctx context.Context, job *model.Job, e model.Enrichment) error {
	now := b.now().UTC()
	job.AIOneLiner = e.OneLiner
	job.AISnippet = e.Snippet
	job.AIBullets = e.Bullets
	job.EnrichedAt = &now
	job.UpdatedAt = now
	if err := b.store.Jobs().Update(ctx, job); err != nil {
		return fmt.Errorf("persist enrichment for %s: %w", job.ID, err)
	}
	return nil
}

func (b *Batch) companyNames(ctx context.Context) (map[string]string, error) {
	companies, err := b.store.Companies().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (b *Batch) day() string {
	return b.now().UTC().Format("2006-01-02")
}
