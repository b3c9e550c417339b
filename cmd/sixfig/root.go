package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/adapter"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ai"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/company"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/config"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/enrich"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ingest"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/notifier"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ratelimit"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/store"
)

// Minimum pause between requests to the same ATS provider. All boards on
// one provider share the budget.
const providerMinDelay = 500 * time.Millisecond

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "sixfig",
	Short: "Six-figure job catalog engine",
	Long:  "Sixfig scrapes ATS boards and aggregators, normalizes postings into a canonical catalog, and enriches them with AI summaries.",
	// Default to `run` so invoking the binary directly executes one
	// pipeline pass.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: SIXFIG_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > SIXFIG_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("SIXFIG_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openStore opens the configured catalog backend. The returned func
// releases the connection.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		sq, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sq, func() { sq.Close() }, nil
	}
}

// newTracker returns the shared run tracker when Redis is configured,
// otherwise a process-local one.
func newTracker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (runstatus.Tracker, error) {
	if cfg.Server.RedisURL == "" {
		return runstatus.NewMemoryTracker(), nil
	}
	tracker, err := runstatus.NewRedisTracker(ctx, cfg.Server.RedisURL, runstatus.DefaultTTL)
	if err != nil {
		return nil, err
	}
	logger.Info("using redis run tracker")
	return tracker, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) notifier.Notifier {
	switch cfg.Notify.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notify.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func newGenerator(cfg *config.Config) ai.TextGenerator {
	client := &http.Client{Timeout: cfg.AI.Timeout}
	return ai.NewOpenAI(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxOutTokens, client)
}

// buildPipeline wires the full stage chain from config.
func buildPipeline(cfg *config.Config, st store.Store, tracker runstatus.Tracker, logger *slog.Logger) *pipeline.Pipeline {
	httpClient := &http.Client{Timeout: cfg.Scrape.RequestTimeout}
	limiter := ratelimit.NewProviderLimiter(providerMinDelay)
	dispatcher := adapter.NewDispatcher(httpClient, limiter, logger)

	resolver := company.NewResolver(st.Companies(), logger)
	engine := ingest.NewEngine(st, resolver, logger)

	var enricher pipeline.Enricher
	if cfg.AI.Enabled {
		enricher = enrich.NewBatch(st, newGenerator(cfg), cfg.AI.RunCap, cfg.AI.DailyTokenCap, logger)
	}

	p := pipeline.New(st, dispatcher, engine, enricher, tracker,
		cfg.Scrape.BoardURLs, cfg.Scrape.Concurrency, logger)
	p.SetNotifier(setupNotifier(cfg, httpClient, logger))
	return p
}
