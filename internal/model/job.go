package model

import (
	"time"
)

// Provider identifies the ATS or board a job was scraped from.
type Provider string

const (
	ProviderGreenhouse Provider = "greenhouse"
	ProviderLever      Provider = "lever"
	ProviderAshby      Provider = "ashby"
	ProviderBoard      Provider = "jobboard"
	ProviderWorkday    Provider = "workday"
)

// LocationKind classifies how a role is worked.
type LocationKind string

const (
	LocationRemote  LocationKind = "remote"
	LocationHybrid  LocationKind = "hybrid"
	LocationOnsite  LocationKind = "onsite"
	LocationUnknown LocationKind = "unknown"
)

// SalaryReason is the terminal classification of a salary parse.
// Exactly one reason applies per parse; reasons are never merged.
type SalaryReason string

const (
	SalaryOK              SalaryReason = "ok"
	SalaryTooHigh         SalaryReason = "too_high"
	SalaryBelowThreshold  SalaryReason = "below_threshold"
	SalaryBadRange        SalaryReason = "bad_range"
	SalaryUnknownCurrency SalaryReason = "unknown_currency"
)

// ScrapedJob is one posting as returned by an adapter, before any
// normalization or reconciliation. Discarded after ingestion.
type ScrapedJob struct {
	ExternalID     string // unique within a provider+company scope
	Title          string
	URL            string
	ApplyURL       string
	CompanyName    string // raw board-supplied company string
	RawLocation    string
	RawSalary      string // free-text salary mention, may be empty
	RawDescription string // HTML carried forward for salary extraction
	Source         Provider
	PostedAt       *time.Time
	UpdatedAt      *time.Time
}

// Company is the canonical employer record. Updates fill missing fields
// only; populated fields are never overwritten by the engine.
type Company struct {
	ID          string
	Name        string
	Slug        string // globally unique
	Website     string
	ATSProvider Provider
	ATSURL      string
	LinkedinURL string
	LogoURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is the canonical persisted posting. One logical posting per
// (Source, ExternalID) pair maps to at most one row.
type Job struct {
	ID        string
	CompanyID string
	Title     string
	URL       string
	ApplyURL  string

	Description string
	Source      Provider
	ExternalID  string

	// RawLocation is the scraped location string, kept so the repair
	// stage can re-normalize after heuristic changes.
	RawLocation   string
	City          string
	Region        string
	Country       string
	LocationKind  LocationKind
	RemoteRegion  string
	MultiLocation bool

	SalaryMin        *float64
	SalaryMax        *float64
	Currency         string
	SalaryInterval   string
	AnnualMin        *float64
	AnnualMax        *float64
	SalaryConfidence string
	SalaryReason     SalaryReason

	// IsExpired moves false→true only; it never reverts.
	IsExpired bool

	AIOneLiner string
	AISnippet  string
	AIBullets  []string
	EnrichedAt *time.Time

	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastSeenAt time.Time
}

// NormalizedLocation is a transient location-normalizer output.
type NormalizedLocation struct {
	Kind          LocationKind
	IsRemote      bool
	City          string
	Region        string
	Country       string
	RemoteRegion  string
	MultiLocation bool
}

// SalaryResult is a transient salary-normalizer output. Annualized values
// are the period-adjusted equivalents of the raw min/max.
type SalaryResult struct {
	Min        *float64
	Max        *float64
	Currency   string
	Interval   string
	AnnualMin  *float64
	AnnualMax  *float64
	Confidence string
	Reason     SalaryReason
}

// RunLedger is the daily AI usage bucket, one row per UTC day.
// Counters only increase; the row rolls over at the UTC day boundary.
type RunLedger struct {
	Day           string // UTC date, YYYY-MM-DD
	JobsProcessed int
	TokensIn      int
	TokensOut     int
}

// Enrichment is the validated output of one AI enrichment call.
type Enrichment struct {
	OneLiner string   `json:"one_liner" validate:"required,min=10,max=120"`
	Snippet  string   `json:"snippet" validate:"required,min=40,max=400"`
	Bullets  []string `json:"bullets" validate:"required,min=2,max=4,dive,min=5,max=200"`
}

// Usage is the token accounting for one AI call.
type Usage struct {
	TokensIn  int
	TokensOut int
}
