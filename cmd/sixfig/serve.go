package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline trigger and status API",
	Long:  "Starts the HTTP API; POST /api/pipeline/run launches a pipeline run in the background. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.Server.Secrets) == 0 {
		logger.Error("server.secrets must list at least one bearer token")
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
	srv := server.New(p, tracker, cfg.Server.Secrets, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down http server")
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := srv.Listen(cfg.Server.Addr); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("goodbye")
	return nil
}
