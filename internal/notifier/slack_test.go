package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

type slackPayload struct {
	Text   string `json:"text"`
	Blocks []struct {
		Type string `json:"type"`
		Text *struct {
			Text string `json:"text"`
		} `json:"text"`
		Fields []struct {
			Text string `json:"text"`
		} `json:"fields"`
	} `json:"blocks"`
}

func TestSlackNotifier_CompletedRun(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())

	if err := n.Notify(context.Background(), sampleRun(runstatus.StatusCompleted)); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if !strings.Contains(payload.Text, "run `run-1` completed") {
		t.Errorf("headline = %q, want completed headline", payload.Text)
	}
	if len(payload.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(payload.Blocks))
	}

	fields := payload.Blocks[1].Fields
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(fields))
	}
	if fields[0].Text != "*Jobs added:*\n12" {
		t.Errorf("jobs field = %q", fields[0].Text)
	}
	if !strings.Contains(fields[2].Text, "boards.example.com") {
		t.Errorf("failed sources field = %q", fields[2].Text)
	}
}

func TestSlackNotifier_FailedRunCarriesError(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	run := sampleRun(runstatus.StatusFailed)
	run.Error = "scrape: upstream timeout"

	if err := n.Notify(context.Background(), run); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if !strings.Contains(payload.Text, "failed") {
		t.Errorf("headline = %q, want failed headline", payload.Text)
	}
	last := payload.Blocks[len(payload.Blocks)-1]
	if last.Text == nil || !strings.Contains(last.Text.Text, "upstream timeout") {
		t.Errorf("error block missing diagnostic, blocks = %s", body)
	}
}

func TestSlackNotifier_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())

	if err := n.Notify(context.Background(), sampleRun(runstatus.StatusCompleted)); err != nil {
		t.Fatalf("Notify() = %v, want nil after retry", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_WebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())

	err := n.Notify(context.Background(), sampleRun(runstatus.StatusCompleted))
	if err == nil {
		t.Fatal("Notify() = nil, want error on 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want status in message", err)
	}
}
