package adapter

import (
	"context"
	"log/slog"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Workday has no public jobs API. The adapter is a stub so callers can
// tell "unsupported" apart from "fetched and found none"; no request is
// ever made.
type Workday struct {
	boardURL string
	logger   *slog.Logger
}

func NewWorkday(boardURL string, logger *slog.Logger) *Workday {
	return &Workday{boardURL: boardURL, logger: logger}
}

func (a *Workday) Scrape(ctx context.Context) ([]model.ScrapedJob, error) {
	a.logger.Debug("workday scraping not implemented, skipping", "url", a.boardURL)
	return nil, nil
}
