package adapter

import (
	"context"
	"net/http"
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestDispatcherScrape_NothingToDo(t *testing.T) {
	// A client whose transport fails loudly proves no request is made.
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			t.Fatalf("unexpected request to %s", req.URL)
			return nil, nil
		}),
	}
	d := NewDispatcher(client, nil, discardLogger())

	tests := []struct {
		name     string
		provider model.Provider
		url      string
	}{
		{"empty url", model.ProviderGreenhouse, ""},
		{"unknown provider", model.Provider("taleo"), "https://example.com/jobs"},
		{"empty provider", model.Provider(""), "https://example.com/jobs"},
		{"workday stub", model.ProviderWorkday, "https://acme.wd1.myworkdayjobs.com/careers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := d.Scrape(context.Background(), tt.provider, tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if jobs != nil {
				t.Errorf("expected nil jobs, got %v", jobs)
			}
		})
	}
}

func TestSalaryMention(t *testing.T) {
	content := "<p>About the role.</p><p>Compensation: $120,000 - $150,000 annually plus equity.</p>"
	got := salaryMention(content)
	if got == "" {
		t.Fatal("expected a salary mention")
	}
	if len(got) > mentionWindow+mentionWindow/3 {
		t.Errorf("mention window too wide: %d chars", len(got))
	}

	if got := salaryMention("<p>No numbers here at all.</p>"); got != "" {
		t.Errorf("expected empty mention, got %q", got)
	}
}
