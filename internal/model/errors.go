package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Stage names a pipeline stage.
type Stage string

const (
	StageScrape          Stage = "scraping"
	StageEnrichURLs      Stage = "enriching-urls"
	StageEnrichAI        Stage = "enriching-ai"
	StageRepairLocations Stage = "repairing-locations"
)

// StageError records which pipeline stage failed and why. The pipeline
// halts on the first StageError; later stages do not run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
