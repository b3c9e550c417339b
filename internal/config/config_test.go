package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  sqlite_path: catalog.db
scrape:
  board_urls:
    - https://board.example.com/remote-jobs
  concurrency: 8
  request_timeout: 15s
  freshness_window: 720h
ai:
  enabled: true
  model: gpt-4o-mini
  api_key: sk-test
  daily_token_cap: 250000
  run_cap: 100
server:
  addr: ":9090"
  secrets:
    - hook-secret
scheduler:
  enabled: true
  schedule: "0 6 * * *"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "catalog.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if len(cfg.Scrape.BoardURLs) != 1 || cfg.Scrape.Concurrency != 8 {
		t.Errorf("Scrape = %+v", cfg.Scrape)
	}
	if cfg.Scrape.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.Scrape.RequestTimeout)
	}
	if cfg.Scrape.FreshnessWindow != 720*time.Hour {
		t.Errorf("FreshnessWindow = %v, want 720h", cfg.Scrape.FreshnessWindow)
	}
	if !cfg.AI.Enabled || cfg.AI.DailyTokenCap != 250000 || cfg.AI.RunCap != 100 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.AI.BaseURL)
	}
	if cfg.Server.Addr != ":9090" || len(cfg.Server.Secrets) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Schedule != "0 6 * * *" {
		t.Errorf("Scheduler = %+v", cfg.Scheduler)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "sixfig.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Scrape.Concurrency != 5 || cfg.Scrape.RequestTimeout != 30*time.Second {
		t.Errorf("Scrape = %+v", cfg.Scrape)
	}
	if cfg.Scrape.FreshnessWindow != 30*24*time.Hour {
		t.Errorf("FreshnessWindow = %v, want 720h", cfg.Scrape.FreshnessWindow)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.AI.Enabled {
		t.Error("AI must default to disabled")
	}
	if cfg.Notify.Type != "log" {
		t.Errorf("Notify.Type = %q, want log", cfg.Notify.Type)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_PG_URL", "postgres://app:pw@db:5432/jobs")
	cfg, err := Load(writeConfig(t, `
store:
  driver: postgres
  postgres_url: ${TEST_PG_URL}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.PostgresURL != "postgres://app:pw@db:5432/jobs" {
		t.Errorf("PostgresURL = %q", cfg.Store.PostgresURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "store: [broken")); err == nil {
		t.Fatal("Load: expected parse error")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "store:\n  driver: dynamo\n"},
		{"postgres without url", "store:\n  driver: postgres\n"},
		{"ai enabled without key", "ai:\n  enabled: true\n  model: gpt-4o-mini\n  daily_token_cap: 100\n"},
		{"ai enabled without model", "ai:\n  enabled: true\n  api_key: sk\n  daily_token_cap: 100\n"},
		{"ai enabled without cap", "ai:\n  enabled: true\n  api_key: sk\n  model: gpt-4o-mini\n"},
		{"short freshness window", "scrape:\n  freshness_window: 2h\n"},
		{"scheduler without schedule", "scheduler:\n  enabled: true\n"},
		{"slack without webhook", "notify:\n  type: slack\n"},
		{"unknown notifier", "notify:\n  type: pagerduty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
