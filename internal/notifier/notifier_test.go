package notifier

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRun(status runstatus.Status) runstatus.Run {
	return runstatus.Run{
		ID:        "run-1",
		Status:    status,
		Stats:     runstatus.Stats{JobsAdded: 12, Failures: 1, FailedSources: []string{"https://boards.example.com"}},
		StartedAt: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestLogNotifier_Notify(t *testing.T) {
	n := NewLogNotifier(discardLogger())

	if err := n.Notify(context.Background(), sampleRun(runstatus.StatusCompleted)); err != nil {
		t.Errorf("Notify(completed) = %v, want nil", err)
	}

	failed := sampleRun(runstatus.StatusFailed)
	failed.Error = "scrape: boom"
	if err := n.Notify(context.Background(), failed); err != nil {
		t.Errorf("Notify(failed) = %v, want nil", err)
	}
}
