// Package notifier reports finished pipeline runs. The log notifier is
// always safe to use; the Slack notifier posts a run summary to an
// Incoming Webhook.
package notifier

import (
	"context"
	"log/slog"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

// Notifier is told about each finished run, successful or not.
type Notifier interface {
	Notify(ctx context.Context, run runstatus.Run) error
}

// Ensure LogNotifier implements Notifier.
var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes a run summary to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs run summaries via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the run outcome. Returns nil (logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, run runstatus.Run) error {
	args := []any{
		"run_id", run.ID,
		"status", run.Status,
		"jobs_added", run.Stats.JobsAdded,
		"failures", run.Stats.Failures,
	}
	if len(run.Stats.FailedSources) > 0 {
		args = append(args, "failed_sources", run.Stats.FailedSources)
	}
	if run.Error != "" {
		args = append(args, "error", run.Error)
		n.logger.Error("run finished", args...)
		return nil
	}
	n.logger.Info("run finished", args...)
	return nil
}
