package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runs"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse pipeline run history (TUI)",
	Long:  "Launches the split-pane run browser over the tracked run history. Requires server.redis_url so history survives across processes.",
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Server.RedisURL == "" {
		logger.Error("run history requires server.redis_url; in-memory runs vanish with their process")
		os.Exit(1)
	}

	tracker, err := runstatus.NewRedisTracker(context.Background(), cfg.Server.RedisURL, runstatus.DefaultTTL)
	if err != nil {
		logger.Error("failed to connect run tracker", "error", err)
		os.Exit(1)
	}

	history, err := runs.Load(tracker)
	if err != nil {
		fmt.Printf("Error loading run history: %v\n", err)
		os.Exit(1)
	}
	if len(history) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	return runs.Browse(history)
}
