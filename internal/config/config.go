package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the ingestion engine.
type Config struct {
	Store     StoreConfig
	Scrape    ScrapeConfig
	AI        AIConfig
	Server    ServerConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	Driver      string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string // expanded from env var by Load
}

// ScrapeConfig controls the scrape stage.
type ScrapeConfig struct {
	BoardURLs       []string
	Concurrency     int
	RequestTimeout  time.Duration
	FreshnessWindow time.Duration // unseen ATS rows past this are expired
}

// AIConfig controls the enrichment batch.
type AIConfig struct {
	Enabled       bool
	BaseURL       string // defaults to https://api.openai.com/v1
	Model         string
	APIKey        string // expanded from env var by Load
	Timeout       time.Duration
	RunCap        int // max jobs per batch run
	DailyTokenCap int // input+output tokens per UTC day
	MaxOutTokens  int // per-call completion budget
}

// ServerConfig controls the trigger/status API.
type ServerConfig struct {
	Addr     string
	Secrets  []string // accepted bearer tokens
	RedisURL string   // optional shared run tracker; empty = in-memory
}

// SchedulerConfig controls the optional cron mode.
type SchedulerConfig struct {
	Enabled  bool
	Schedule string // cron expression
}

// NotifyConfig selects how finished runs are reported.
type NotifyConfig struct {
	Type       string // "log" or "slack"
	WebhookURL string // expanded from env var by Load
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Store     rawStoreConfig     `yaml:"store"`
	Scrape    rawScrapeConfig    `yaml:"scrape"`
	AI        rawAIConfig        `yaml:"ai"`
	Server    rawServerConfig    `yaml:"server"`
	Scheduler rawSchedulerConfig `yaml:"scheduler"`
	Notify    rawNotifyConfig    `yaml:"notify"`
}

type rawStoreConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
}

type rawScrapeConfig struct {
	BoardURLs       []string `yaml:"board_urls"`
	Concurrency     int      `yaml:"concurrency"`
	RequestTimeout  string   `yaml:"request_timeout"`
	FreshnessWindow string   `yaml:"freshness_window"`
}

type rawAIConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	Timeout       string `yaml:"timeout"`
	RunCap        int    `yaml:"run_cap"`
	DailyTokenCap int    `yaml:"daily_token_cap"`
	MaxOutTokens  int    `yaml:"max_out_tokens"`
}

type rawServerConfig struct {
	Addr     string   `yaml:"addr"`
	Secrets  []string `yaml:"secrets"`
	RedisURL string   `yaml:"redis_url"`
}

type rawSchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type rawNotifyConfig struct {
	Type       string `yaml:"type"`
	WebhookURL string `yaml:"webhook_url"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first, so
// secrets can live outside the file as ${VAR} references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	requestTimeout := 30 * time.Second
	if raw.Scrape.RequestTimeout != "" {
		requestTimeout, err = time.ParseDuration(raw.Scrape.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.request_timeout %q: %w", raw.Scrape.RequestTimeout, err)
		}
	}

	freshness := 30 * 24 * time.Hour
	if raw.Scrape.FreshnessWindow != "" {
		freshness, err = time.ParseDuration(raw.Scrape.FreshnessWindow)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.freshness_window %q: %w", raw.Scrape.FreshnessWindow, err)
		}
	}

	aiTimeout := 60 * time.Second
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	driver := raw.Store.Driver
	if driver == "" {
		driver = "sqlite"
	}
	sqlitePath := raw.Store.SQLitePath
	if sqlitePath == "" {
		sqlitePath = "sixfig.db"
	}

	concurrency := raw.Scrape.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	notifyType := raw.Notify.Type
	if notifyType == "" {
		notifyType = "log"
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:      driver,
			SQLitePath:  sqlitePath,
			PostgresURL: raw.Store.PostgresURL,
		},
		Scrape: ScrapeConfig{
			BoardURLs:       raw.Scrape.BoardURLs,
			Concurrency:     concurrency,
			RequestTimeout:  requestTimeout,
			FreshnessWindow: freshness,
		},
		AI: AIConfig{
			Enabled:       raw.AI.Enabled,
			BaseURL:       aiBaseURL,
			Model:         raw.AI.Model,
			APIKey:        raw.AI.APIKey,
			Timeout:       aiTimeout,
			RunCap:        raw.AI.RunCap,
			DailyTokenCap: raw.AI.DailyTokenCap,
			MaxOutTokens:  raw.AI.MaxOutTokens,
		},
		Server: ServerConfig{
			Addr:     addr,
			Secrets:  raw.Server.Secrets,
			RedisURL: raw.Server.RedisURL,
		},
		Scheduler: SchedulerConfig{
			Enabled:  raw.Scheduler.Enabled,
			Schedule: raw.Scheduler.Schedule,
		},
		Notify: NotifyConfig{
			Type:       notifyType,
			WebhookURL: raw.Notify.WebhookURL,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required with the sqlite driver")
		}
	case "postgres":
		if cfg.Store.PostgresURL == "" {
			return fmt.Errorf("store.postgres_url is required with the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Store.Driver)
	}

	if cfg.Scrape.RequestTimeout <= 0 {
		return fmt.Errorf("scrape.request_timeout must be positive, got %v", cfg.Scrape.RequestTimeout)
	}
	if cfg.Scrape.FreshnessWindow < 24*time.Hour {
		return fmt.Errorf("scrape.freshness_window must be at least 24h, got %v", cfg.Scrape.FreshnessWindow)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
		if cfg.AI.DailyTokenCap <= 0 {
			return fmt.Errorf("ai.daily_token_cap must be positive when ai.enabled is true")
		}
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.Schedule == "" {
		return fmt.Errorf("scheduler.schedule is required when scheduler.enabled is true")
	}

	switch cfg.Notify.Type {
	case "log":
	case "slack":
		if cfg.Notify.WebhookURL == "" {
			return fmt.Errorf("notify.webhook_url is required with the slack notifier")
		}
	default:
		return fmt.Errorf("notify.type must be \"log\" or \"slack\", got %q", cfg.Notify.Type)
	}

	return nil
}
