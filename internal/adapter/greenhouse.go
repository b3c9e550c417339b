package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/retry"
)

const (
	greenhouseAPIBase = "https://boards-api.greenhouse.io/v1/boards"

	greenhouseAttempts = 3
	greenhouseBackoff  = 500 * time.Millisecond
)

// greenhouseJob mirrors one entry of the boards API listing response.
type greenhouseJob struct {
	ID               int64              `json:"id"`
	Title            string             `json:"title"`
	AbsoluteURL      string             `json:"absolute_url"`
	Location         greenhouseLocation `json:"location"`
	UpdatedAt        string             `json:"updated_at"`
	FirstPublishedAt string             `json:"first_published_at"`
	Content          string             `json:"content"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Greenhouse scrapes a Greenhouse-hosted board through the public boards
// API, requesting full content so salary extraction can run downstream.
type Greenhouse struct {
	boardURL string
	client   *http.Client
	logger   *slog.Logger
}

// NewGreenhouse creates an adapter for the board behind the given URL.
func NewGreenhouse(boardURL string, client *http.Client, logger *slog.Logger) *Greenhouse {
	return &Greenhouse{boardURL: boardURL, client: client, logger: logger}
}

var (
	greenhousePathTokenRE = regexp.MustCompile(`^/?(?:embed/job_board/?)?([A-Za-z0-9_-]+)`)
	bareTokenRE           = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// GreenhouseBoardToken extracts the board slug from any of the historical
// Greenhouse URL shapes: boards.greenhouse.io/<token>,
// job-boards.greenhouse.io/<token>, the embed form with a ?for= query
// parameter, or a bare token.
func GreenhouseBoardToken(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Not a URL; treat a plain slug-looking string as the token.
		if bareTokenRE.MatchString(raw) {
			return raw
		}
		return ""
	}

	if token := u.Query().Get("for"); token != "" {
		return token
	}

	if !strings.Contains(u.Host, "greenhouse.io") {
		return ""
	}

	m := greenhousePathTokenRE.FindStringSubmatch(u.Path)
	if m == nil || m[1] == "embed" {
		return ""
	}
	return m[1]
}

// Scrape lists the board's jobs. Transport and HTTP errors are retried with
// linear backoff; after exhausting retries the whole board call fails so the
// caller can record the scrape as failed instead of under-reporting.
func (a *Greenhouse) Scrape(ctx context.Context) ([]model.ScrapedJob, error) {
	token := GreenhouseBoardToken(a.boardURL)
	if token == "" {
		a.logger.Warn("no greenhouse board token in url, skipping", "url", a.boardURL)
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseAPIBase, token)

	var ghResp greenhouseResponse
	err := retry.Do(ctx, greenhouseAttempts, retry.Linear(greenhouseBackoff), func() error {
		return a.fetch(ctx, endpoint, &ghResp)
	})
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", token, err)
	}

	jobs := make([]model.ScrapedJob, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		if gj.ID == 0 || gj.Title == "" {
			a.logger.Warn("skipping malformed greenhouse record", "board", token)
			continue
		}

		sj := model.ScrapedJob{
			ExternalID:     fmt.Sprintf("%d", gj.ID),
			Title:          gj.Title,
			URL:            gj.AbsoluteURL,
			ApplyURL:       gj.AbsoluteURL,
			RawLocation:    gj.Location.Name,
			RawDescription: gj.Content,
			RawSalary:      salaryMention(gj.Content),
			Source:         model.ProviderGreenhouse,
		}
		if t, err := time.Parse(time.RFC3339, gj.FirstPublishedAt); err == nil {
			sj.PostedAt = &t
		}
		if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
			sj.UpdatedAt = &t
		}
		jobs = append(jobs, sj)
	}

	return jobs, nil
}

// fetch does one listing request. Errors are plain (not HTTPError) so the
// retry loop treats every transport and HTTP failure as retryable, per the
// board-level retry policy.
func (a *Greenhouse) fetch(ctx context.Context, endpoint string, out *greenhouseResponse) error {
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
