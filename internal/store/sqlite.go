package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// SQLite is the default single-file store for the canonical catalog.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	slug          TEXT NOT NULL UNIQUE,
	website       TEXT NOT NULL DEFAULT '',
	ats_provider  TEXT NOT NULL DEFAULT '',
	ats_url       TEXT NOT NULL DEFAULT '',
	linkedin_url  TEXT NOT NULL DEFAULT '',
	logo_url      TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
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
	multi_location    INTEGER NOT NULL DEFAULT 0,
	salary_min        REAL,
	salary_max        REAL,
	currency          TEXT NOT NULL DEFAULT '',
	salary_interval   TEXT NOT NULL DEFAULT '',
	annual_min        REAL,
	annual_max        REAL,
	salary_confidence TEXT NOT NULL DEFAULT '',
	salary_reason     TEXT NOT NULL DEFAULT '',
	is_expired        INTEGER NOT NULL DEFAULT 0,
	ai_one_liner      TEXT NOT NULL DEFAULT '',
	ai_snippet        TEXT NOT NULL DEFAULT '',
	ai_bullets        TEXT NOT NULL DEFAULT '[]',
	enriched_at       DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL,
	last_seen_at      DATETIME NOT NULL,
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

// NewSQLite opens (or creates) the database at dbPath and bootstraps the
// schema.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error { return s.db.Close() }

// Companies returns the company repository view.
func (s *SQLite) Companies() model.CompanyRepository { return sqliteCompanies{s.db} }

// Jobs returns the job repository view.
func (s *SQLite) Jobs() model.JobRepository { return sqliteJobs{s.db} }

// Ledger returns the AI usage ledger view.
func (s *SQLite) Ledger() model.LedgerRepository { return sqliteLedger{s.db} }

type sqliteCompanies struct{ db *sql.DB }

const companyColumns = `id, name, slug, website, ats_provider, ats_url, linkedin_url, logo_url, created_at, updated_at`

func scanCompany(row *sql.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Website, &c.ATSProvider,
		&c.ATSURL, &c.LinkedinURL, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r sqliteCompanies) GetByName(ctx context.Context, name string) (*model.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower(?)`, name)
	c, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("get company by name %q: %w", name, err)
	}
	return c, nil
}

func (r sqliteCompanies) GetByATSURL(ctx context.Context, atsURL string) (*model.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE ats_url != '' AND lower(ats_url) = lower(?)`, atsURL)
	c, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("get company by ats url: %w", err)
	}
	return c, nil
}

func (r sqliteCompanies) GetBySlug(ctx context.Context, slug string) (*model.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE slug = ?`, slug)
	c, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("get company by slug %q: %w", slug, err)
	}
	return c, nil
}

func (r sqliteCompanies) Create(ctx context.Context, c *model.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (`+companyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Website, c.ATSProvider, c.ATSURL,
		c.LinkedinURL, c.LogoURL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company %q: %w", c.Name, err)
	}
	return nil
}

func (r sqliteCompanies) Update(ctx context.Context, c *model.Company) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = ?, slug = ?, website = ?, ats_provider = ?,
			ats_url = ?, linkedin_url = ?, logo_url = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Slug, c.Website, c.ATSProvider, c.ATSURL,
		c.LinkedinURL, c.LogoURL, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update company %q: %w", c.Name, err)
	}
	return nil
}

func (r sqliteCompanies) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.QueryContext(ctx,
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

type sqliteJobs struct{ db *sql.DB }

const jobColumns = `id, company_id, title, url, apply_url, description, source, external_id,
	raw_location, city, region, country, location_kind, remote_region, multi_location,
	salary_min, salary_max, currency, salary_interval, annual_min, annual_max,
	salary_confidence, salary_reason, is_expired,
	ai_one_liner, ai_snippet, ai_bullets, enriched_at,
	created_at, updated_at, last_seen_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*model.Job, error) {
	var (
		j              model.Job
		salMin, salMax sql.NullFloat64
		annMin, annMax sql.NullFloat64
		enrichedAt     sql.NullTime
		bulletsJSON    string
	)
	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.URL, &j.ApplyURL, &j.Description,
		&j.Source, &j.ExternalID, &j.RawLocation, &j.City, &j.Region, &j.Country, &j.LocationKind,
		&j.RemoteRegion, &j.MultiLocation, &salMin, &salMax, &j.Currency,
		&j.SalaryInterval, &annMin, &annMax, &j.SalaryConfidence, &j.SalaryReason,
		&j.IsExpired, &j.AIOneLiner, &j.AISnippet, &bulletsJSON, &enrichedAt,
		&j.CreatedAt, &j.UpdatedAt, &j.LastSeenAt)
	if err != nil {
		return nil, err
	}
	j.SalaryMin = nullFloat(salMin)
	j.SalaryMax = nullFloat(salMax)
	j.AnnualMin = nullFloat(annMin)
	j.AnnualMax = nullFloat(annMax)
	if enrichedAt.Valid {
		t := enrichedAt.Time
		j.EnrichedAt = &t
	}
	if bulletsJSON != "" {
		if err := json.Unmarshal([]byte(bulletsJSON), &j.AIBullets); err != nil {
			return nil, fmt.Errorf("decode ai_bullets: %w", err)
		}
	}
	return &j, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func timeArg(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func bulletsArg(bullets []string) (string, error) {
	if bullets == nil {
		bullets = []string{}
	}
	b, err := json.Marshal(bullets)
	if err != nil {
		return "", fmt.Errorf("encode ai_bullets: %w", err)
	}
	return string(b), nil
}

func (r sqliteJobs) GetByKey(ctx context.Context, source model.Provider, externalID string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source = ? AND external_id = ?`,
		source, externalID)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s/%s: %w", source, externalID, err)
	}
	return j, nil
}

func (r sqliteJobs) Create(ctx context.Context, j *model.Job) error {
	bullets, err := bulletsArg(j.AIBullets)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CompanyID, j.Title, j.URL, j.ApplyURL, j.Description, j.Source, j.ExternalID,
		j.RawLocation, j.City, j.Region, j.Country, j.LocationKind, j.RemoteRegion, j.MultiLocation,
		floatArg(j.SalaryMin), floatArg(j.SalaryMax), j.Currency, j.SalaryInterval,
		floatArg(j.AnnualMin), floatArg(j.AnnualMax), j.SalaryConfidence, j.SalaryReason,
		j.IsExpired, j.AIOneLiner, j.AISnippet, bullets, timeArg(j.EnrichedAt),
		j.CreatedAt, j.UpdatedAt, j.LastSeenAt)
	if err != nil {
		return fmt.Errorf("create job %s/%s: %w", j.Source, j.ExternalID, err)
	}
	return nil
}

func (r sqliteJobs) Update(ctx context.Context, j *model.Job) error {
	bullets, err := bulletsArg(j.AIBullets)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE jobs SET company_id = ?, title = ?, url = ?, apply_url = ?, description = ?,
			raw_location = ?, city = ?, region = ?, country = ?, location_kind = ?, remote_region = ?, multi_location = ?,
			salary_min = ?, salary_max = ?, currency = ?, salary_interval = ?,
			annual_min = ?, annual_max = ?, salary_confidence = ?, salary_reason = ?,
			is_expired = ?, ai_one_liner = ?, ai_snippet = ?, ai_bullets = ?, enriched_at = ?,
			updated_at = ?, last_seen_at = ?
		WHERE id = ?`,
		j.CompanyID, j.Title, j.URL, j.ApplyURL, j.Description,
		j.RawLocation, j.City, j.Region, j.Country, j.LocationKind, j.RemoteRegion, j.MultiLocation,
		floatArg(j.SalaryMin), floatArg(j.SalaryMax), j.Currency, j.SalaryInterval,
		floatArg(j.AnnualMin), floatArg(j.AnnualMax), j.SalaryConfidence, j.SalaryReason,
		j.IsExpired, j.AIOneLiner, j.AISnippet, bullets, timeArg(j.EnrichedAt),
		j.UpdatedAt, j.LastSeenAt, j.ID)
	if err != nil {
		return fmt.Errorf("update job %s/%s: %w", j.Source, j.ExternalID, err)
	}
	return nil
}

func (r sqliteJobs) listWhere(ctx context.Context, where string, limit int) ([]model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + where + ` ORDER BY created_at`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r sqliteJobs) ListUnenriched(ctx context.Context, limit int) ([]model.Job, error) {
	jobs, err := r.listWhere(ctx, `ai_one_liner = '' AND is_expired = 0`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unenriched jobs: %w", err)
	}
	return jobs, nil
}

func (r sqliteJobs) ListUnknownLocation(ctx context.Context, limit int) ([]model.Job, error) {
	jobs, err := r.listWhere(ctx, `location_kind = 'unknown' AND is_expired = 0`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unknown-location jobs: %w", err)
	}
	return jobs, nil
}

func (r sqliteJobs) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET is_expired = 1, updated_at = ?
		WHERE is_expired = 0 AND source != ? AND last_seen_at < ?`,
		time.Now().UTC(), model.ProviderBoard, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale jobs: %w", err)
	}
	return res.RowsAffected()
}

type sqliteLedger struct{ db *sql.DB }

func (r sqliteLedger) Get(ctx context.Context, day string) (*model.RunLedger, error) {
	var l model.RunLedger
	err := r.db.QueryRowContext(ctx,
		`SELECT day, jobs_processed, tokens_in, tokens_out FROM ai_ledger WHERE day = ?`, day).
		Scan(&l.Day, &l.JobsProcessed, &l.TokensIn, &l.TokensOut)
	if err == sql.ErrNoRows {
		return &model.RunLedger{Day: day}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger for %s: %w", day, err)
	}
	return &l, nil
}

func (r sqliteLedger) Add(ctx context.Context, day string, jobs, tokensIn, tokensOut int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_ledger (day, jobs_processed, tokens_in, tokens_out)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			jobs_processed = jobs_processed + excluded.jobs_processed,
			tokens_in = tokens_in + excluded.tokens_in,
			tokens_out = tokens_out + excluded.tokens_out`,
		day, jobs, tokensIn, tokensOut)
	if err != nil {
		return fmt.Errorf("add to ledger for %s: %w", day, err)
	}
	return nil
}
