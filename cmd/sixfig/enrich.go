package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ai"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/enrich"
)

var enrichDryRun bool

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one AI enrichment batch",
	Long:  "Enriches unenriched catalog rows with AI summaries until the run cap or the daily token budget is hit, then exits.",
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "use canned output instead of calling the AI provider")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.AI.Enabled && !enrichDryRun {
		logger.Error("ai.enabled must be true (or pass --dry-run)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var gen ai.TextGenerator
	if enrichDryRun {
		logger.Info("dry-run mode: using canned enrichment output")
		gen = ai.NewStatic()
	} else {
		gen = newGenerator(cfg)
	}

	batch := enrich.NewBatch(st, gen, cfg.AI.RunCap, cfg.AI.DailyTokenCap, logger)
	res, err := batch.Run(ctx)
	if err != nil {
		logger.Error("enrichment batch failed", "error", err)
		os.Exit(1)
	}

	logger.Info("enrichment complete",
		"enriched", res.Enriched,
		"failed", res.Failed,
		"cap_reached", res.CapReached,
	)
	return nil
}
