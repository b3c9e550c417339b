package company

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Candidate carries the raw identity signals a scraped job knows about its
// employer.
type Candidate struct {
	RawName  string
	Source   model.Provider
	Website  string
	ApplyURL string
	ATSURL   string
}

// Resolver reconciles raw company strings against the canonical catalog.
type Resolver struct {
	companies model.CompanyRepository
	logger    *slog.Logger
}

// NewResolver creates a resolver backed by the given repository.
func NewResolver(companies model.CompanyRepository, logger *slog.Logger) *Resolver {
	return &Resolver{companies: companies, logger: logger}
}

// Resolve sanitizes the candidate's name and returns the matching canonical
// company, creating one if needed. A sanitizer rejection returns (nil, nil):
// a silent skip, not an error.
func (r *Resolver) Resolve(ctx context.Context, cand Candidate) (*model.Company, error) {
	name, ok := Clean(cand.RawName)
	if !ok {
		r.logger.Debug("company name rejected by sanitizer", "raw", cand.RawName, "source", cand.Source)
		return nil, nil
	}

	atsProvider, atsURL := InferATS(cand.ATSURL)
	if atsProvider == "" {
		atsProvider, atsURL = InferATS(cand.ApplyURL)
	}

	existing, err := r.companies.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving company %q: %w", name, err)
	}
	if existing == nil && atsURL != "" {
		existing, err = r.companies.GetByATSURL(ctx, atsURL)
		if err != nil {
			return nil, fmt.Errorf("resolving company %q by ats url: %w", name, err)
		}
	}

	if existing != nil {
		if r.fillMissing(existing, atsProvider, atsURL, cand.Website) {
			existing.UpdatedAt = time.Now().UTC()
			if err := r.companies.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("updating company %q: %w", existing.Name, err)
			}
		}
		return existing, nil
	}

	slug, err := r.freeSlug(ctx, Slugify(name))
	if err != nil {
		return nil, fmt.Errorf("assigning slug for %q: %w", name, err)
	}

	now := time.Now().UTC()
	created := &model.Company{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Website:     cand.Website,
		ATSProvider: atsProvider,
		ATSURL:      atsURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.companies.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("creating company %q: %w", name, err)
	}
	r.logger.Info("created company", "name", name, "slug", slug, "ats", atsProvider)
	return created, nil
}

// fillMissing copies signals into currently-empty fields only. Populated
// data is never overwritten.
func (r *Resolver) fillMissing(c *model.Company, atsProvider model.Provider, atsURL, website string) bool {
	changed := false
	if c.ATSProvider == "" && atsProvider != "" {
		c.ATSProvider = atsProvider
		changed = true
	}
	if c.ATSURL == "" && atsURL != "" {
		c.ATSURL = atsURL
		changed = true
	}
	if c.Website == "" && website != "" {
		c.Website = website
		changed = true
	}
	return changed
}

// freeSlug resolves collisions by appending an incrementing numeric suffix
// until the store reports the slug free.
func (r *Resolver) freeSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "company"
	}
	slug := base
	for i := 2; ; i++ {
		existing, err := r.companies.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

var (
	slugInvalidRE = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashRE    = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe identifier from a display name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalidRE.ReplaceAllString(s, "-")
	s = slugDashRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// atsHosts maps well-known ATS hostnames to providers.
var atsHosts = []struct {
	needle   string
	provider model.Provider
}{
	{"greenhouse.io", model.ProviderGreenhouse},
	{"lever.co", model.ProviderLever},
	{"ashbyhq.com", model.ProviderAshby},
	{"myworkdayjobs.com", model.ProviderWorkday},
}

// InferATS recognizes a provider from an apply or board URL. Unknown hosts
// return empty values; inference never guesses.
func InferATS(rawURL string) (model.Provider, string) {
	if rawURL == "" {
		return "", ""
	}
	lower := strings.ToLower(rawURL)
	for _, h := range atsHosts {
		if strings.Contains(lower, h.needle) {
			return h.provider, rawURL
		}
	}
	return "", ""
}
