package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/retry"
)

const (
	ashbyAPIBase = "https://api.ashbyhq.com/posting-api/job-board"

	ashbyAttempts = 3
	ashbyBackoff  = 500 * time.Millisecond
)

// ashbyJob mirrors one entry of the posting API response.
type ashbyJob struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Location     string            `json:"location"`
	JobURL       string            `json:"jobUrl"`
	ApplyURL     string            `json:"applyUrl"`
	PublishedAt  string            `json:"publishedAt"`
	IsListed     bool              `json:"isListed"`
	Compensation ashbyCompensation `json:"compensation"`
}

type ashbyCompensation struct {
	CompensationTierSummary string `json:"compensationTierSummary"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// Ashby scrapes an Ashby-hosted board through the public posting API,
// requesting compensation so salary extraction can run downstream.
type Ashby struct {
	boardURL string
	client   *http.Client
	logger   *slog.Logger
}

// NewAshby creates an adapter for the board behind the given URL.
func NewAshby(boardURL string, client *http.Client, logger *slog.Logger) *Ashby {
	return &Ashby{boardURL: boardURL, client: client, logger: logger}
}

// AshbyBoardToken extracts the organization slug from an Ashby board URL
// (jobs.ashbyhq.com/<org>, with or without a trailing job path) or accepts
// a bare slug.
func AshbyBoardToken(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if bareTokenRE.MatchString(raw) {
			return raw
		}
		return ""
	}

	if !strings.Contains(u.Host, "ashbyhq.com") {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

// Scrape lists the board's postings. Unlisted postings are dropped.
// Transport and HTTP errors are retried with linear backoff; exhaustion
// fails the whole board call.
func (a *Ashby) Scrape(ctx context.Context) ([]model.ScrapedJob, error) {
	token := AshbyBoardToken(a.boardURL)
	if token == "" {
		a.logger.Warn("no ashby organization in url, skipping", "url", a.boardURL)
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyAPIBase, token)

	var abResp ashbyResponse
	err := retry.Do(ctx, ashbyAttempts, retry.Linear(ashbyBackoff), func() error {
		return a.fetch(ctx, endpoint, &abResp)
	})
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", token, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(abResp.Jobs))
	for _, aj := range abResp.Jobs {
		if !aj.IsListed {
			continue
		}
		if aj.Title == "" || (aj.ID == "" && aj.JobURL == "") {
			a.logger.Warn("skipping malformed ashby record", "board", token)
			continue
		}

		externalID := aj.ID
		if externalID == "" {
			externalID = aj.JobURL
		}
		applyURL := aj.ApplyURL
		if applyURL == "" {
			applyURL = aj.JobURL
		}

		sj := model.ScrapedJob{
			ExternalID:  externalID,
			Title:       aj.Title,
			URL:         aj.JobURL,
			ApplyURL:    applyURL,
			RawLocation: aj.Location,
			RawSalary:   aj.Compensation.CompensationTierSummary,
			Source:      model.ProviderAshby,
		}
		if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
			sj.PostedAt = &t
		}
		jobs = append(jobs, sj)
	}

	return jobs, nil
}

// fetch does one listing request. Errors are plain so the retry loop treats
// every transport and HTTP failure as retryable, matching the board-level
// retry policy.
func (a *Ashby) fetch(ctx context.Context, endpoint string, out *ashbyResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
