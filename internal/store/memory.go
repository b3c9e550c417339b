package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Memory holds all repositories in process memory. Used for dry runs and
// tests; nothing survives the process.
type Memory struct {
	mu        sync.Mutex
	companies map[string]*model.Company // keyed by ID
	jobs      map[string]*model.Job     // keyed by source+"\x00"+externalID
	ledgers   map[string]*model.RunLedger
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		companies: make(map[string]*model.Company),
		jobs:      make(map[string]*model.Job),
		ledgers:   make(map[string]*model.RunLedger),
	}
}

// Companies returns the company repository view.
func (m *Memory) Companies() model.CompanyRepository { return memCompanies{m} }

// Jobs returns the job repository view.
func (m *Memory) Jobs() model.JobRepository { return memJobs{m} }

// Ledger returns the AI usage ledger view.
func (m *Memory) Ledger() model.LedgerRepository { return memLedger{m} }

func jobKey(source model.Provider, externalID string) string {
	return string(source) + "\x00" + externalID
}

type memCompanies struct{ m *Memory }

func (r memCompanies) GetByName(_ context.Context, name string) (*model.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memCompanies) GetByATSURL(_ context.Context, atsURL string) (*model.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if c.ATSURL != "" && strings.EqualFold(c.ATSURL, atsURL) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memCompanies) GetBySlug(_ context.Context, slug string) (*model.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memCompanies) Create(_ context.Context, c *model.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *c
	r.m.companies[c.ID] = &cp
	return nil
}

func (r memCompanies) Update(ctx context.Context, c *model.Company) error {
	return r.Create(ctx, c)
}

func (r memCompanies) List(_ context.Context) ([]model.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]model.Company, 0, len(r.m.companies))
	for _, c := range r.m.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memJobs struct{ m *Memory }

func (r memJobs) GetByKey(_ context.Context, source model.Provider, externalID string) (*model.Job, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if j, ok := r.m.jobs[jobKey(source, externalID)]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (r memJobs) Create(_ context.Context, j *model.Job) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *j
	r.m.jobs[jobKey(j.Source, j.ExternalID)] = &cp
	return nil
}

func (r memJobs) Update(ctx context.Context, j *model.Job) error {
	return r.Create(ctx, j)
}

func (r memJobs) ListUnenriched(_ context.Context, limit int) ([]model.Job, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Job
	for _, j := range r.m.jobs {
		if j.AIOneLiner == "" && !j.IsExpired {
			out = append(out, *j)
		}
	}
	sortByCreated(out)
	return clip(out, limit), nil
}

func (r memJobs) ListUnknownLocation(_ context.Context, limit int) ([]model.Job, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Job
	for _, j := range r.m.jobs {
		if j.LocationKind == model.LocationUnknown && !j.IsExpired {
			out = append(out, *j)
		}
	}
	sortByCreated(out)
	return clip(out, limit), nil
}

func (r memJobs) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, j := range r.m.jobs {
		// Board-sourced rows have no reliable freshness signal.
		if j.IsExpired || j.Source == model.ProviderBoard {
			continue
		}
		if j.LastSeenAt.Before(cutoff) {
			j.IsExpired = true
			n++
		}
	}
	return n, nil
}

type memLedger struct{ m *Memory }

func (r memLedger) Get(_ context.Context, day string) (*model.RunLedger, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if l, ok := r.m.ledgers[day]; ok {
		cp := *l
		return &cp, nil
	}
	return &model.RunLedger{Day: day}, nil
}

func (r memLedger) Add(_ context.Context, day string, jobs, tokensIn, tokensOut int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.ledgers[day]
	if !ok {
		l = &model.RunLedger{Day: day}
		r.m.ledgers[day] = l
	}
	l.JobsProcessed += jobs
	l.TokensIn += tokensIn
	l.TokensOut += tokensOut
	return nil
}

func sortByCreated(jobs []model.Job) {
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
}

func clip(jobs []model.Job, limit int) []model.Job {
	if limit > 0 && len(jobs) > limit {
		return jobs[:limit]
	}
	return jobs
}
