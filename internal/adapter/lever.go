package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/retry"
)

const (
	leverPageSize = 100
	leverMaxJobs  = 500
	leverAttempts = 3
	leverBackoff  = 500 * time.Millisecond
)

// leverPosting mirrors one entry of the Lever postings JSON.
type leverPosting struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	HostedURL        string            `json:"hostedUrl"`
	ApplyURL         string            `json:"applyUrl"`
	CreatedAt        int64             `json:"createdAt"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Description      string            `json:"description"`
	Categories       leverCategories   `json:"categories"`
	SalaryRange      *leverSalaryRange `json:"salaryRange"`
	Lists            []leverList       `json:"lists"`
	AdditionalFields []leverField      `json:"additional"`
}

type leverCategories struct {
	Location   string `json:"location"`
	Commitment string `json:"commitment"`
}

type leverSalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

type leverField struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Lever scrapes a Lever-hosted board via its public JSON mode, paginating
// with a fixed page size up to a hard per-company cap.
type Lever struct {
	boardURL string
	client   *http.Client
	logger   *slog.Logger
}

// NewLever creates an adapter for the board behind the given public page
// URL.
func NewLever(boardURL string, client *http.Client, logger *slog.Logger) *Lever {
	return &Lever{boardURL: boardURL, client: client, logger: logger}
}

// Scrape pages through the board. It stops when a page comes back short or
// contributes zero new unique external IDs; some boards ignore pagination
// and loop forever. A non-JSON (HTML) response means the board is likely
// blocking us and is fatal for the whole board.
func (a *Lever) Scrape(ctx context.Context) ([]model.ScrapedJob, error) {
	seen := make(map[string]bool)
	var jobs []model.ScrapedJob

	for skip := 0; len(jobs) < leverMaxJobs; skip += leverPageSize {
		var page []leverPosting
		err := retry.Do(ctx, leverAttempts, retry.Linear(leverBackoff), func() error {
			p, ferr := a.fetchPage(ctx, skip, leverPageSize)
			if ferr != nil {
				return ferr
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("lever fetch %s skip=%d: %w", a.boardURL, skip, err)
		}

		newOnPage := 0
		for _, lp := range page {
			if lp.ID == "" || seen[lp.ID] {
				continue
			}
			seen[lp.ID] = true
			newOnPage++
			jobs = append(jobs, a.toScraped(lp))
		}

		if newOnPage == 0 || len(page) < leverPageSize {
			break
		}
	}

	return jobs, nil
}

func (a *Lever) fetchPage(ctx context.Context, skip, limit int) ([]leverPosting, error) {
	endpoint, err := pageURL(a.boardURL, skip, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// HTML where JSON was expected: we are being served a block page.
	// No point retrying against a blocker.
	if looksLikeHTML(body) {
		return nil, retry.Permanent(fmt.Errorf("non-JSON response, board likely blocked"))
	}

	var page []leverPosting
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return page, nil
}

func pageURL(boardURL string, skip, limit int) (string, error) {
	u, err := url.Parse(boardURL)
	if err != nil {
		return "", fmt.Errorf("parse board url: %w", err)
	}
	q := u.Query()
	q.Set("mode", "json")
	q.Set("skip", fmt.Sprintf("%d", skip))
	q.Set("limit", fmt.Sprintf("%d", limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

var salaryFieldKeywords = []string{"compensation", "salary", "range", "pay"}

func (a *Lever) toScraped(lp leverPosting) model.ScrapedJob {
	sj := model.ScrapedJob{
		ExternalID:     lp.ID,
		Title:          lp.Text,
		URL:            lp.HostedURL,
		ApplyURL:       lp.ApplyURL,
		RawLocation:    lp.Categories.Location,
		RawDescription: lp.Description,
		RawSalary:      leverSalaryText(lp),
		Source:         model.ProviderLever,
	}
	if lp.CreatedAt > 0 {
		t := time.UnixMilli(lp.CreatedAt)
		sj.PostedAt = &t
	}
	return sj
}

// leverSalaryText builds one salary-mention string from the structured
// compensation field, list items labeled with salary keywords, and custom
// additional fields matching those keywords. The combined text goes through
// the same parser as free text.
func leverSalaryText(lp leverPosting) string {
	var parts []string

	if sr := lp.SalaryRange; sr != nil && (sr.Min > 0 || sr.Max > 0) {
		interval := sr.Interval
		if interval == "" {
			interval = "year"
		}
		parts = append(parts, fmt.Sprintf("%s %.0f - %.0f per %s", sr.Currency, sr.Min, sr.Max, interval))
	}

	for _, l := range lp.Lists {
		if containsSalaryKeyword(l.Text) {
			parts = append(parts, extractText(l.Content))
		}
	}
	for _, f := range lp.AdditionalFields {
		if containsSalaryKeyword(f.Text) {
			parts = append(parts, f.Value)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

func containsSalaryKeyword(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range salaryFieldKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
