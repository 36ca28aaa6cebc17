// Package slack sends finalized triage summaries to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
	"github.com/mwill20/MultiAgent-SOC/internal/triage"
)

const (
	maxNarrativeLen = 3000
	httpTimeout     = 10 * time.Second
)

// Notifier posts triage summaries to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts a triage summary to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, summary *triage.Summary) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(summary)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(s *triage.Summary) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(s),
			{"type": "divider"},
			fieldsBlock(s),
			{"type": "divider"},
			narrativeBlock(s),
			{"type": "divider"},
			contextBlock(s),
		},
	}
}

func headerBlock(s *triage.Summary) map[string]any {
	text := fmt.Sprintf("%s Triage Finalized: %s", actionEmoji(s.Action), s.IncidentID)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(s *triage.Summary) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Action:* %s", s.Action),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Risk:* %s", s.Risk),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Alerts:* %d", s.AlertCount),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Correlated:* %t", s.Correlated),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Overridden:* %t", s.Overridden),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Duration:* %.1fs", s.Duration),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func narrativeBlock(s *triage.Summary) map[string]any {
	text := truncate(s.Narrative, maxNarrativeLen)
	if text == "" {
		text = "_No narrative available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Narrative*\n\n%s", text),
		},
	}
}

func contextBlock(s *triage.Summary) map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("aegis • turn %s • %s", s.TurnID, s.CompletedAt.UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}

func actionEmoji(a action.Action) string {
	switch a {
	case action.Escalate:
		return "\U0001f534" // red circle
	case action.Monitor:
		return "\U0001f7e1" // yellow circle
	case action.Close:
		return "\U0001f7e2" // green circle
	default:
		return "⚪" // white circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
