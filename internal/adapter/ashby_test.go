package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestAshbyBoardToken(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"board url", "https://jobs.ashbyhq.com/acme", "acme"},
		{"trailing slash", "https://jobs.ashbyhq.com/acme/", "acme"},
		{"job path", "https://jobs.ashbyhq.com/acme/4f1e2c", "acme"},
		{"bare token", "acme", "acme"},
		{"non ashby host", "https://boards.greenhouse.io/acme", ""},
		{"host only", "https://jobs.ashbyhq.com", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AshbyBoardToken(tt.url); got != tt.want {
				t.Errorf("AshbyBoardToken(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

const ashbyListing = `{
	"jobs": [
		{
			"id": "a1b2c3",
			"title": "Staff Engineer",
			"location": "Remote - US",
			"jobUrl": "https://jobs.ashbyhq.com/acme/a1b2c3",
			"applyUrl": "https://jobs.ashbyhq.com/acme/a1b2c3/application",
			"publishedAt": "2026-02-10T09:00:00Z",
			"isListed": true,
			"compensation": {"compensationTierSummary": "$180K - $220K"}
		},
		{
			"id": "d4e5f6",
			"title": "Hidden Role",
			"jobUrl": "https://jobs.ashbyhq.com/acme/d4e5f6",
			"isListed": false
		},
		{
			"title": "",
			"isListed": true
		},
		{
			"title": "Designer",
			"jobUrl": "https://jobs.ashbyhq.com/acme/g7h8i9",
			"location": "Austin, TX",
			"isListed": true
		}
	]
}`

func TestAshbyScrape(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, ashbyListing)
	}))
	defer srv.Close()

	a := NewAshby("https://jobs.ashbyhq.com/acme", rewriteClient(srv), discardLogger())

	jobs, err := a.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if gotPath != "/posting-api/job-board/acme" {
		t.Errorf("request path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "includeCompensation=true") {
		t.Errorf("query = %q, want includeCompensation=true", gotQuery)
	}

	// Unlisted and malformed records dropped.
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}

	j := jobs[0]
	if j.ExternalID != "a1b2c3" || j.Source != model.ProviderAshby {
		t.Errorf("identity = %q/%q", j.ExternalID, j.Source)
	}
	if j.ApplyURL != "https://jobs.ashbyhq.com/acme/a1b2c3/application" {
		t.Errorf("ApplyURL = %q", j.ApplyURL)
	}
	if j.RawLocation != "Remote - US" {
		t.Errorf("RawLocation = %q", j.RawLocation)
	}
	if j.RawSalary != "$180K - $220K" {
		t.Errorf("RawSalary = %q", j.RawSalary)
	}
	if j.PostedAt == nil || j.PostedAt.Day() != 10 {
		t.Errorf("PostedAt = %v", j.PostedAt)
	}

	// Record without an id falls back to the job URL; without an applyUrl,
	// the job URL doubles as the apply URL.
	d := jobs[1]
	if d.ExternalID != "https://jobs.ashbyhq.com/acme/g7h8i9" {
		t.Errorf("fallback ExternalID = %q", d.ExternalID)
	}
	if d.ApplyURL != d.URL {
		t.Errorf("ApplyURL = %q, want job url", d.ApplyURL)
	}
	if d.RawSalary != "" {
		t.Errorf("RawSalary = %q, want empty", d.RawSalary)
	}
}

func TestAshbyScrape_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"jobs": [{"id": "a1", "title": "Engineer", "jobUrl": "https://jobs.ashbyhq.com/acme/a1", "isListed": true}]}`)
	}))
	defer srv.Close()

	a := NewAshby("https://jobs.ashbyhq.com/acme", rewriteClient(srv), discardLogger())

	jobs, err := a.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("got %d jobs, want 1", len(jobs))
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 requests, got %d", c)
	}
}

func TestAshbyScrape_NoOrganization(t *testing.T) {
	failing := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			t.Error("unexpected request")
			return nil, fmt.Errorf("no requests expected")
		}),
	}

	a := NewAshby("https://careers.example.com/acme", failing, discardLogger())

	jobs, err := a.Scrape(context.Background())
	if err != nil || jobs != nil {
		t.Errorf("Scrape() = %v, %v, want nil, nil", jobs, err)
	}
}
