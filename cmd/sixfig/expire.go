package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/company"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/ingest"
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire stale catalog rows",
	Long:  "Marks ATS-sourced rows not seen within the freshness window as expired. Expiry is one-way; rows are never deleted.",
	RunE:  runExpire,
}

func init() {
	rootCmd.AddCommand(expireCmd)
}

func runExpire(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
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

	engine := ingest.NewEngine(st, company.NewResolver(st.Companies(), logger), logger)
	expired, err := engine.ExpireStale(ctx, cfg.Scrape.FreshnessWindow)
	if err != nil {
		logger.Error("expiry sweep failed", "error", err)
		os.Exit(1)
	}

	logger.Info("expiry sweep complete",
		"expired", expired,
		"window", cfg.Scrape.FreshnessWindow.String(),
	)
	return nil
}
