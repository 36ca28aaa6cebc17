// Package claude implements llm.Provider on the Anthropic API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mwill20/MultiAgent-SOC/internal/llm"
)

const (
	// maxRetries bounds the SDK's own exponential backoff on
	// rate-limit and server-error responses. Retry policy lives here,
	// with the collaborator, not in the orchestrator.
	maxRetries = 4

	responseTokens = 2048
)

// UsageObserver receives per-call outcome and token usage.
type UsageObserver interface {
	ObserveUsage(model, outcome string, inputTokens, outputTokens int64)
}

// UsageObserverFunc adapts a function to UsageObserver.
type UsageObserverFunc func(model, outcome string, inputTokens, outputTokens int64)

// ObserveUsage implements UsageObserver.
func (f UsageObserverFunc) ObserveUsage(model, outcome string, inputTokens, outputTokens int64) {
	f(model, outcome, inputTokens, outputTokens)
}

// usageObserver is wired once at startup, before any traffic.
var usageObserver UsageObserver

// SetUsageObserver installs the observer notified after every API
// call. Call before serving traffic; not safe for concurrent use with
// Invoke.
func SetUsageObserver(o UsageObserver) {
	usageObserver = o
}

func observeUsage(model, outcome string, in, out int64) {
	if usageObserver != nil {
		usageObserver.ObserveUsage(model, outcome, in, out)
	}
}

// Client calls the Claude Messages API.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude client for the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(maxRetries),
		),
		model: anthropic.Model(model),
	}
}

// Invoke sends one system+prompt exchange and returns the generated
// text. Retries on transient status classes are handled by the SDK;
// an error returned here is terminal for the turn.
func (c *Client) Invoke(ctx context.Context, system, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: responseTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		observeUsage(string(c.model), "error", 0, 0)
		return "", classify(err)
	}
	observeUsage(string(c.model), "ok", msg.Usage.InputTokens, msg.Usage.OutputTokens)

	text := extractText(msg)
	if text == "" {
		return "", fmt.Errorf("%w: response contained no text content", llm.ErrFatal)
	}
	return text, nil
}

// classify maps an SDK error onto the llm error kinds.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusRequestTimeout,
			apierr.StatusCode == http.StatusTooManyRequests,
			apierr.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: claude api status %d: %v", llm.ErrTransient, apierr.StatusCode, err)
		default:
			return fmt.Errorf("%w: claude api status %d: %v", llm.ErrFatal, apierr.StatusCode, err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", llm.ErrFatal, err)
	}
	// transport failures and deadline expiry are retryable classes
	// that the SDK already retried
	return fmt.Errorf("%w: %v", llm.ErrTransient, err)
}

// extractText concatenates the text blocks of a response.
func extractText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
