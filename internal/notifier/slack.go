package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

// Ensure SlackNotifier implements Notifier.
var _ Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each run summary to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends one Block Kit message for the run. A 429 from Slack is
// retried once after the advertised delay.
func (s *SlackNotifier) Notify(ctx context.Context, run runstatus.Run) error {
	body, err := json.Marshal(buildPayload(run))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying once", "retry_after_s", secs)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(secs) * time.Second):
		}

		resp, err = s.post(ctx, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to slack: %w", err)
	}
	return resp, nil
}

// buildPayload renders the run as a Block Kit message: a headline with the
// outcome, then a fields section with the counters.
func buildPayload(run runstatus.Run) map[string]any {
	headline := fmt.Sprintf(":white_check_mark: Pipeline run `%s` completed", run.ID)
	if run.Status == runstatus.StatusFailed {
		headline = fmt.Sprintf(":x: Pipeline run `%s` failed", run.ID)
	}

	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Jobs added:*\n%d", run.Stats.JobsAdded)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Failures:*\n%d", run.Stats.Failures)},
	}
	if len(run.Stats.FailedSources) > 0 {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": "*Failed sources:*\n" + strings.Join(run.Stats.FailedSources, "\n"),
		})
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": headline},
		},
		{
			"type":   "section",
			"fields": fields,
		},
	}
	if run.Error != "" {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": "*Error:*\n```" + run.Error + "```"},
		})
	}

	return map[string]any{
		"text":   headline,
		"blocks": blocks,
	}
}
