package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/scheduler"
)

var (
	runMode     string
	runSchedule string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestion pipeline",
	Long:  "Runs one full pipeline pass, or keeps firing passes on a cron schedule when --schedule is set.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "source classes to scrape: all, boards, or ats (default all)")
	runCmd.Flags().StringVar(&runSchedule, "schedule", "", `cron schedule, e.g. "@every 6h"; empty runs once and exits`)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	mode, err := pipeline.ParseMode(runMode)
	if err != nil {
		logger.Error("invalid mode", "error", err)
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

	tracker, err := newTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect run tracker", "error", err)
		os.Exit(1)
	}

	p := buildPipeline(cfg, st, tracker, logger)

	schedule := runSchedule
	if schedule == "" && cfg.Scheduler.Enabled {
		schedule = cfg.Scheduler.Schedule
	}
	if schedule != "" {
		sched := scheduler.New(p, tracker, mode, schedule, logger)
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
			os.Exit(1)
		}
		logger.Info("goodbye")
		return nil
	}

	runID, err := tracker.Create(ctx)
	if err != nil {
		logger.Error("failed to register run", "error", err)
		os.Exit(1)
	}
	return p.Run(ctx, runID, mode)
}
