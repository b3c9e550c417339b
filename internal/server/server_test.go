package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

type stubRunner struct {
	started chan struct{}
	mode    pipeline.Mode
}

func (r *stubRunner) Run(_ context.Context, _ string, mode pipeline.Mode) error {
	r.mode = mode
	if r.started != nil {
		close(r.started)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(runner Runner, tracker runstatus.Tracker) *Server {
	return New(runner, tracker, []string{"secret-one", "secret-two"}, discardLogger())
}

func authed(method, target, secret string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestTriggerRun_RejectsMissingOrWrongSecret(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	runner := &stubRunner{}
	s := newTestServer(runner, tracker)

	for _, secret := range []string{"", "wrong"} {
		resp, err := s.App().Test(authed(http.MethodPost, "/api/pipeline/run", secret))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("secret %q: expected 401, got %d", secret, resp.StatusCode)
		}
	}

	// No side effects: nothing was started.
	if runner.mode != "" {
		t.Error("pipeline started despite failed auth")
	}
}

func TestTriggerRun_StartsPipelineAsync(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	runner := &stubRunner{started: make(chan struct{})}
	s := newTestServer(runner, tracker)

	resp, err := s.App().Test(authed(http.MethodPost, "/api/pipeline/run?mode=boards", "secret-two"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decode(t, resp)
	if body["success"] != true {
		t.Errorf("expected success, got %v", body)
	}
	runID, _ := body["jobId"].(string)
	if runID == "" {
		t.Fatal("expected a run id")
	}
	if body["statusUrl"] != "/api/pipeline/status/"+runID {
		t.Errorf("unexpected status url: %v", body["statusUrl"])
	}

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline not started")
	}
	if runner.mode != pipeline.ModeBoards {
		t.Errorf("expected boards mode, got %s", runner.mode)
	}

	if _, err := tracker.Get(context.Background(), runID); err != nil {
		t.Errorf("run not registered: %v", err)
	}
}

func TestTriggerRun_GetAlsoTriggers(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	runner := &stubRunner{started: make(chan struct{})}
	s := newTestServer(runner, tracker)

	resp, err := s.App().Test(authed(http.MethodGet, "/api/pipeline/run", "secret-one"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline not started")
	}
}

func TestTriggerRun_BadMode(t *testing.T) {
	s := newTestServer(&stubRunner{}, runstatus.NewMemoryTracker())

	resp, err := s.App().Test(authed(http.MethodPost, "/api/pipeline/run?mode=bogus", "secret-one"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRunStatus(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	s := newTestServer(&stubRunner{}, tracker)
	ctx := context.Background()

	id, _ := tracker.Create(ctx)
	stats := runstatus.Stats{JobsAdded: 7, Failures: 1, FailedSources: []string{"https://jobs.lever.co/acme"}}
	if err := tracker.Complete(ctx, id, stats); err != nil {
		t.Fatal(err)
	}

	resp, err := s.App().Test(authed(http.MethodGet, "/api/pipeline/status/"+id, "secret-one"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decode(t, resp)
	if body["id"] != id || body["status"] != string(runstatus.StatusCompleted) {
		t.Errorf("unexpected body: %v", body)
	}
	if _, hasErr := body["error"]; hasErr {
		t.Error("completed run must not carry an error field")
	}
	statsBody, _ := body["stats"].(map[string]any)
	if statsBody["jobsAdded"] != float64(7) {
		t.Errorf("unexpected stats: %v", statsBody)
	}
}

func TestRunStatus_FailedRunCarriesError(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	s := newTestServer(&stubRunner{}, tracker)
	ctx := context.Background()

	id, _ := tracker.Create(ctx)
	stageErr := &model.StageError{Stage: model.StageScrape, Err: errors.New("all sources down")}
	if err := tracker.Fail(ctx, id, runstatus.Stats{}, stageErr); err != nil {
		t.Fatal(err)
	}

	resp, err := s.App().Test(authed(http.MethodGet, "/api/pipeline/status/"+id, "secret-one"))
	if err != nil {
		t.Fatal(err)
	}
	body := decode(t, resp)
	if body["status"] != string(runstatus.StatusFailed) {
		t.Errorf("expected failed status, got %v", body["status"])
	}
	if body["error"] == "" || body["error"] == nil {
		t.Error("expected error diagnostic in body")
	}
}

func TestRunStatus_UnknownAndUnauthenticated(t *testing.T) {
	tracker := runstatus.NewMemoryTracker()
	s := newTestServer(&stubRunner{}, tracker)

	resp, err := s.App().Test(authed(http.MethodGet, "/api/pipeline/status/no-such-run", "secret-one"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = s.App().Test(authed(http.MethodGet, "/api/pipeline/status/no-such-run", ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := newTestServer(&stubRunner{}, runstatus.NewMemoryTracker())
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
