package company

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/store"
)

func testResolver() (*Resolver, *store.Memory) {
	mem := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(mem.Companies(), logger), mem
}

func TestResolve_CreatesWithSlug(t *testing.T) {
	r, _ := testResolver()

	c, err := r.Resolve(context.Background(), Candidate{RawName: "Acme Inc - Remote"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected company, got nil")
	}
	if c.Name != "Acme Inc" {
		t.Errorf("expected name Acme Inc, got %q", c.Name)
	}
	if c.Slug != "acme-inc" {
		t.Errorf("expected slug acme-inc, got %q", c.Slug)
	}
}

func TestResolve_SlugCollision(t *testing.T) {
	r, _ := testResolver()
	ctx := context.Background()

	first, err := r.Resolve(ctx, Candidate{RawName: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Different canonical name, same slug base.
	second, err := r.Resolve(ctx, Candidate{RawName: "ACME!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Slug != "acme" {
		t.Errorf("expected first slug acme, got %q", first.Slug)
	}
	if second.Slug != "acme-2" {
		t.Errorf("expected second slug acme-2, got %q", second.Slug)
	}
}

func TestResolve_SanitizerRejectionIsSilent(t *testing.T) {
	r, _ := testResolver()

	c, err := r.Resolve(context.Background(), Candidate{RawName: "Remote"})
	if err != nil {
		t.Fatalf("rejection must not be an error, got %v", err)
	}
	if c != nil {
		t.Errorf("expected nil company, got %+v", c)
	}
}

func TestResolve_MatchByName_FillsMissingOnly(t *testing.T) {
	r, mem := testResolver()
	ctx := context.Background()

	existing := &model.Company{
		ID:      "c1",
		Name:    "Acme Inc",
		Slug:    "acme-inc",
		Website: "https://acme.example",
	}
	if err := mem.Companies().Create(ctx, existing); err != nil {
		t.Fatal(err)
	}

	c, err := r.Resolve(ctx, Candidate{
		RawName:  "acme inc",
		Website:  "https://other.example",
		ApplyURL: "https://boards.greenhouse.io/acme/jobs/1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c1" {
		t.Fatalf("expected match on existing company, got %q", c.ID)
	}
	if c.Website != "https://acme.example" {
		t.Errorf("populated website must not be overwritten, got %q", c.Website)
	}
	if c.ATSProvider != model.ProviderGreenhouse {
		t.Errorf("missing ats provider should be filled, got %q", c.ATSProvider)
	}
}

func TestResolve_MatchByATSURL(t *testing.T) {
	r, mem := testResolver()
	ctx := context.Background()

	existing := &model.Company{
		ID:     "c1",
		Name:   "Acme Incorporated",
		Slug:   "acme-incorporated",
		ATSURL: "https://boards.greenhouse.io/acme",
	}
	if err := mem.Companies().Create(ctx, existing); err != nil {
		t.Fatal(err)
	}

	// Same employer, different board-supplied name; matched by ATS URL.
	c, err := r.Resolve(ctx, Candidate{
		RawName: "Acme Co",
		ATSURL:  "https://boards.greenhouse.io/acme",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c1" {
		t.Errorf("expected ATS URL match on c1, got %q", c.ID)
	}
}

func TestInferATS(t *testing.T) {
	tests := []struct {
		url  string
		want model.Provider
	}{
		{"https://boards.greenhouse.io/acme", model.ProviderGreenhouse},
		{"https://jobs.lever.co/acme", model.ProviderLever},
		{"https://jobs.ashbyhq.com/acme", model.ProviderAshby},
		{"https://acme.wd1.myworkdayjobs.com/External", model.ProviderWorkday},
		{"https://careers.acme.example", ""},
		{"", ""},
	}
	for _, tc := range tests {
		got, _ := InferATS(tc.url)
		if got != tc.want {
			t.Errorf("InferATS(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
