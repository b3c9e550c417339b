package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Postgres backs the catalog with a pgx connection pool for deployments
// where several processes read the same data.
type Postgres struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	slug          TEXT NOT NULL UNIQUE,
	website       TEXT NOT NULL DEFAULT '',
	ats_provider  TEXT NOT NULL DEFAULT '',
	ats_url       TEXT NOT NULL DEFAULT '',
	linkedin_url  TEXT NOT NULL DEFAULT '',
	logo_url      TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(lower(name));
CREATE INDEX IF NOT EXISTS idx_companies_ats_url ON companies(ats_url);

CREATE TABLE IF NOT EXISTS jobs (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL,
	title             TEXT NOT NULL,
	url               TEXT NOT NULL DEFAULT '',
	apply_url         TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL,
	external_id       TEXT NOT NULL,
	raw_location      TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	region            TEXT NOT NULL DEFAULT '',
	country           TEXT NOT NULL DEFAULT '',
	location_kind     TEXT NOT NULL DEFAULT 'unknown',
	remote_region     TEXT NOT NULL DEFAULT '',
	multi_location    BOOLEAN NOT NULL DEFAULT FALSE,
	salary_min        DOUBLE PRECISION,
	salary_max        DOUBLE PRECISION,
	currency          TEXT NOT NULL DEFAULT '',
	salary_interval   TEXT NOT NULL DEFAULT '',
	annual_min        DOUBLE PRECISION,
	annual_max        DOUBLE PRECISION,
	salary_confidence TEXT NOT NULL DEFAULT '',
	salary_reason     TEXT NOT NULL DEFAULT '',
	is_expired        BOOLEAN NOT NULL DEFAULT FALSE,
	ai_one_liner      TEXT NOT NULL DEFAULT '',
	ai_snippet        TEXT NOT NULL DEFAULT '',
	ai_bullets        TEXT[] NOT NULL DEFAULT '{}',
	enriched_at       TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	last_seen_at      TIMESTAMPTZ NOT NULL,
	UNIQUE(source, external_id)
);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id);
CREATE INDEX IF NOT EXISTS idx_jobs_unenriched ON jobs(ai_one_liner, is_expired);

CREATE TABLE IF NOT EXISTS ai_ledger (
	day            TEXT PRIMARY KEY,
	jobs_processed INTEGER NOT NULL DEFAULT 0,
	tokens_in      INTEGER NOT NULL DEFAULT 0,
	tokens_out     INTEGER NOT NULL DEFAULT 0
);
`

// NewPostgres creates and verifies a pgxpool-backed store and bootstraps the
// schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// Companies returns the company repository view.
func (p *Postgres) Companies() model.CompanyRepository { return pgCompanies{p.pool} }

// Jobs returns the job repository view.
func (p *Postgres) Jobs() model.JobRepository { return pgJobs{p.pool} }

// Ledger returns the AI usage ledger view.
func (p *Postgres) Ledger() model.LedgerRepository { return pgLedger{p.pool} }

type pgCompanies struct{ pool *pgxpool.Pool }

func (r pgCompanies) getWhere(ctx context.Context, where string, arg any) (*model.Company, error) {
	var c model.Company
	err := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE `+where, arg).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Website, &c.ATSProvider,
			&c.ATSURL, &c.LinkedinURL, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r pgCompanies) GetByName(ctx context.Context, name string) (*model.Company, error) {
	c, err := r.getWhere(ctx, `lower(name) = lower($1)`, name)
	if err != nil {
		return nil, fmt.Errorf("get company by name %q: %w", name, err)
	}
	return c, nil
}

func (r pgCompanies) GetByATSURL(ctx context.Context, atsURL string) (*model.Company, error) {
	c, err := r.getWhere(ctx, `ats_url != '' AND lower(ats_url) = lower($1)`, atsURL)
	if err != nil {
		return nil, fmt.Errorf("get company by ats url: %w", err)
	}
	return c, nil
}

func (r pgCompanies) GetBySlug(ctx context.Context, slug string) (*model.Company, error) {
	c, err := r.getWhere(ctx, `slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("get company by slug %q: %w", slug, err)
	}
	return c, nil
}

func (r pgCompanies) Create(ctx context.Context, c *model.Company) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Slug, c.Website, c.ATSProvider, c.ATSURL,
		c.LinkedinURL, c.LogoURL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company %q: %w", c.Name, err)
	}
	return nil
}

func (r pgCompanies) Update(ctx context.Context, c *model.Company) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $1, slug = $2, website = $3, ats_provider = $4,
			ats_url = $5, linkedin_url = $6, logo_url = $7, updated_at = $8 WHERE id = $9`,
		c.Name, c.Slug, c.Website, c.ATSProvider, c.ATSURL,
		c.LinkedinURL, c.LogoURL, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update company %q: %w", c.Name, err)
	}
	return nil
}

func (r pgCompanies) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Website, &c.ATSProvider,
			&c.ATSURL, &c.LinkedinURL, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type pgJobs struct{ pool *pgxpool.Pool }

func scanPgJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.URL, &j.ApplyURL, &j.Description,
		&j.Source, &j.ExternalID, &j.RawLocation, &j.City, &j.Region, &j.Country, &j.LocationKind,
		&j.RemoteRegion, &j.MultiLocation, &j.SalaryMin, &j.SalaryMax, &j.Currency,
		&j.SalaryInterval, &j.AnnualMin, &j.AnnualMax, &j.SalaryConfidence, &j.SalaryReason,
		&j.IsExpired, &j.AIOneLiner, &j.AISnippet, &j.AIBullets, &j.EnrichedAt,
		&j.CreatedAt, &j.UpdatedAt, &j.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r pgJobs) GetByKey(ctx context.Context, source model.Provider, externalID string) (*model.Job, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source = $1 AND external_id = $2`,
		source, externalID)
	j, err := scanPgJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s/%s: %w", source, externalID, err)
	}
	return j, nil
}

func jobArgs(j *model.Job) []any {
	bullets := j.AIBullets
	if bullets == nil {
		bullets = []string{}
	}
	return []any{
		j.ID, j.CompanyID, j.Title, j.URL, j.ApplyURL, j.Description, j.Source, j.ExternalID,
		j.RawLocation, j.City, j.Region, j.Country, j.LocationKind, j.RemoteRegion, j.MultiLocation,
		j.SalaryMin, j.SalaryMax, j.Currency, j.SalaryInterval, j.AnnualMin, j.AnnualMax,
		j.SalaryConfidence, j.SalaryReason, j.IsExpired, j.AIOneLiner, j.AISnippet,
		bullets, j.EnrichedAt, j.CreatedAt, j.UpdatedAt, j.LastSeenAt,
	}
}

func (r pgJobs) Create(ctx context.Context, j *model.Job) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		jobArgs(j)...)
	if err != nil {
		return fmt.Errorf("create job %s/%s: %w", j.Source, j.ExternalID, err)
	}
	return nil
}

func (r pgJobs) Update(ctx context.Context, j *model.Job) error {
	bullets := j.AIBullets
	if bullets == nil {
		bullets = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET company_id = $1, title = $2, url = $3, apply_url = $4, description = $5,
			raw_location = $6, city = $7, region = $8, country = $9, location_kind = $10,
			remote_region = $11, multi_location = $12, salary_min = $13, salary_max = $14,
			currency = $15, salary_interval = $16, annual_min = $17, annual_max = $18,
			salary_confidence = $19, salary_reason = $20, is_expired = $21, ai_one_liner = $22,
			ai_snippet = $23, ai_bullets = $24, enriched_at = $25, updated_at = $26, last_seen_at = $27
		WHERE id = $28`,
		j.CompanyID, j.Title, j.URL, j.ApplyURL, j.Description,
		j.RawLocation, j.City, j.Region, j.Country, j.LocationKind,
		j.RemoteRegion, j.MultiLocation, j.SalaryMin, j.SalaryMax,
		j.Currency, j.SalaryInterval, j.AnnualMin, j.AnnualMax,
		j.SalaryConfidence, j.SalaryReason, j.IsExpired, j.AIOneLiner,
		j.AISnippet, bullets, j.EnrichedAt, j.UpdatedAt, j.LastSeenAt, j.ID)
	if err != nil {
		return fmt.Errorf("update job %s/%s: %w", j.Source, j.ExternalID, err)
	}
	return nil
}

func (r pgJobs) listWhere(ctx context.Context, where string, limit int) ([]model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + where + ` ORDER BY created_at`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r pgJobs) ListUnenriched(ctx context.Context, limit int) ([]model.Job, error) {
	jobs, err := r.listWhere(ctx, `ai_one_liner = '' AND NOT is_expired`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unenriched jobs: %w", err)
	}
	return jobs, nil
}

func (r pgJobs) ListUnknownLocation(ctx context.Context, limit int) ([]model.Job, error) {
	jobs, err := r.listWhere(ctx, `location_kind = 'unknown' AND NOT is_expired`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unknown-location jobs: %w", err)
	}
	return jobs, nil
}

func (r pgJobs) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET is_expired = TRUE, updated_at = now()
		WHERE NOT is_expired AND source != $1 AND last_seen_at < $2`,
		model.ProviderBoard, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

type pgLedger struct{ pool *pgxpool.Pool }

func (r pgLedger) Get(ctx context.Context, day string) (*model.RunLedger, error) {
	var l model.RunLedger
	err := r.pool.QueryRow(ctx,
		`SELECT day, jobs_processed, tokens_in, tokens_out FROM ai_ledger WHERE day = $1`, day).
		Scan(&l.Day, &l.JobsProcessed, &l.TokensIn, &l.TokensOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.RunLedger{Day: day}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger for %s: %w", day, err)
	}
	return &l, nil
}

func (r pgLedger) Add(ctx context.Context, day string, jobs, tokensIn, tokensOut int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ai_ledger (day, jobs_processed, tokens_in, tokens_out)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day) DO UPDATE SET
			jobs_processed = ai_ledger.jobs_processed + EXCLUDED.jobs_processed,
			tokens_in = ai_ledger.tokens_in + EXCLUDED.tokens_in,
			tokens_out = ai_ledger.tokens_out + EXCLUDED.tokens_out`,
		day, jobs, tokensIn, tokensOut)
	if err != nil {
		return fmt.Errorf("add to ledger for %s: %w", day, err)
	}
	return nil
}
