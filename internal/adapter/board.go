package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// jobPosting is the schema.org JobPosting subset we read out of embedded
// ld+json blocks. Graph pages wrap postings in @graph.
type jobPosting struct {
	Type               string        `json:"@type"`
	Graph              []jobPosting  `json:"@graph"`
	Title              string        `json:"title"`
	URL                string        `json:"url"`
	DatePosted         string        `json:"datePosted"`
	Description        string        `json:"description"`
	Identifier         idField       `json:"identifier"`
	HiringOrganization orgField      `json:"hiringOrganization"`
	JobLocation        locationField `json:"jobLocation"`
	JobLocationType    string        `json:"jobLocationType"`
	BaseSalary         *salaryField  `json:"baseSalary"`
}

type idField struct {
	Value string `json:"value"`
}

type orgField struct {
	Name string `json:"name"`
}

type locationField struct {
	Address addressField `json:"address"`
}

type addressField struct {
	Locality string `json:"addressLocality"`
	Region   string `json:"addressRegion"`
	Country  string `json:"addressCountry"`
}

type salaryField struct {
	Currency string      `json:"currency"`
	Value    salaryValue `json:"value"`
}

type salaryValue struct {
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
	Value    float64 `json:"value"`
	UnitText string  `json:"unitText"`
}

// Board scrapes an aggregator-style HTML job board. Structured ld+json
// postings are preferred; pages without them fall back to job-link anchors.
type Board struct {
	boardURL string
	logger   *slog.Logger
}

func NewBoard(boardURL string, logger *slog.Logger) *Board {
	return &Board{boardURL: boardURL, logger: logger}
}

// Scrape visits the board page once and collects every posting it can
// identify. Individual malformed entries are logged and skipped.
func (a *Board) Scrape(ctx context.Context) ([]model.ScrapedJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		jobs    []model.ScrapedJob
		seen    = make(map[string]bool)
		scanErr error
	)

	c := colly.NewCollector(colly.UserAgent("Mozilla/5.0 (compatible; sixfig/1.0)"))
	c.SetRequestTimeout(30 * time.Second)

	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		for _, posting := range parsePostings(e.Text) {
			sj, ok := a.fromPosting(posting)
			if !ok || seen[sj.ExternalID] {
				continue
			}
			seen[sj.ExternalID] = true
			jobs = append(jobs, sj)
		}
	})

	// Fallback for boards without structured data: anchors that carry a
	// job id attribute, sometimes with a compensation caption alongside.
	c.OnHTML(`a[data-job-id]`, func(e *colly.HTMLElement) {
		sj, ok := a.fromAnchor(e)
		if !ok || seen[sj.ExternalID] {
			return
		}
		seen[sj.ExternalID] = true
		jobs = append(jobs, sj)
	})

	c.OnError(func(r *colly.Response, err error) {
		scanErr = fmt.Errorf("fetch board %s: %w", a.boardURL, err)
	})

	if err := c.Visit(a.boardURL); err != nil {
		return nil, fmt.Errorf("visit board %s: %w", a.boardURL, err)
	}
	c.Wait()

	if scanErr != nil {
		return nil, scanErr
	}
	return jobs, nil
}

// parsePostings accepts a single posting, an array of postings, or an
// @graph wrapper, and returns the JobPosting entries found.
func parsePostings(raw string) []jobPosting {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []jobPosting
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil
		}
	} else {
		var one jobPosting
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil
		}
		if len(one.Graph) > 0 {
			list = one.Graph
		} else {
			list = []jobPosting{one}
		}
	}

	var postings []jobPosting
	for _, p := range list {
		if strings.EqualFold(p.Type, "JobPosting") {
			postings = append(postings, p)
		}
	}
	return postings
}

func (a *Board) fromPosting(p jobPosting) (model.ScrapedJob, bool) {
	if p.Title == "" || p.URL == "" {
		a.logger.Debug("skipping board posting without title or url", "board", a.boardURL)
		return model.ScrapedJob{}, false
	}

	externalID := p.Identifier.Value
	if externalID == "" {
		// Boards without stable ids key rows on the apply URL.
		externalID = p.URL
	}

	sj := model.ScrapedJob{
		ExternalID:     externalID,
		Title:          p.Title,
		URL:            p.URL,
		ApplyURL:       p.URL,
		CompanyName:    p.HiringOrganization.Name,
		RawLocation:    postingLocation(p),
		RawSalary:      postingSalary(p.BaseSalary),
		RawDescription: p.Description,
		Source:         model.ProviderBoard,
	}
	if t, err := time.Parse("2006-01-02", p.DatePosted); err == nil {
		sj.PostedAt = &t
	} else if t, err := time.Parse(time.RFC3339, p.DatePosted); err == nil {
		sj.PostedAt = &t
	}
	return sj, true
}

func postingLocation(p jobPosting) string {
	if strings.EqualFold(p.JobLocationType, "TELECOMMUTE") {
		return "Remote"
	}
	addr := p.JobLocation.Address
	var parts []string
	for _, s := range []string{addr.Locality, addr.Region, addr.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// postingSalary renders a structured baseSalary as a text mention for the
// shared parser. The board publishes fixed-point values (dollars×100), so
// every figure is divided by 100 first.
func postingSalary(s *salaryField) string {
	if s == nil {
		return ""
	}
	min, max := s.Value.MinValue, s.Value.MaxValue
	if min == 0 && max == 0 {
		min = s.Value.Value
	}
	if min == 0 && max == 0 {
		return ""
	}

	min /= 100
	max /= 100

	unit := strings.ToLower(s.Value.UnitText)
	if unit == "" {
		unit = "year"
	}
	if max > 0 {
		return fmt.Sprintf("%s %.0f - %.0f per %s", s.Currency, min, max, unit)
	}
	return fmt.Sprintf("%s %.0f per %s", s.Currency, min, unit)
}

func (a *Board) fromAnchor(e *colly.HTMLElement) (model.ScrapedJob, bool) {
	href := e.Request.AbsoluteURL(e.Attr("href"))
	title := strings.TrimSpace(e.Text)
	if href == "" || title == "" {
		a.logger.Debug("skipping board anchor without href or text", "board", a.boardURL)
		return model.ScrapedJob{}, false
	}

	externalID := e.Attr("data-job-id")
	if externalID == "" {
		externalID = href
	}

	return model.ScrapedJob{
		ExternalID:  externalID,
		Title:       title,
		URL:         href,
		ApplyURL:    href,
		CompanyName: e.Attr("data-company"),
		RawLocation: e.Attr("data-location"),
		RawSalary:   anchorSalary(e),
		Source:      model.ProviderBoard,
	}, true
}

// anchorSalary prefers numeric data attributes (fixed-point, divided by
// 100) over the free-text caption.
func anchorSalary(e *colly.HTMLElement) string {
	minRaw, maxRaw := e.Attr("data-salary-min"), e.Attr("data-salary-max")
	min, errMin := strconv.ParseFloat(minRaw, 64)
	max, errMax := strconv.ParseFloat(maxRaw, 64)
	if errMin == nil && errMax == nil && min > 0 && max > 0 {
		currency := e.Attr("data-salary-currency")
		if currency == "" {
			currency = "USD"
		}
		return fmt.Sprintf("%s %.0f - %.0f per year", currency, min/100, max/100)
	}
	return strings.TrimSpace(e.Attr("data-salary"))
}
