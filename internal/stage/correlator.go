package stage

import (
	"context"
	"fmt"

	"github.com/mwill20/MultiAgent-SOC/internal/llm"
)

const correlatorSystemPrompt = `You are a SOC correlation specialist.

You are given a human-readable description of one or more alerts. If
there is only one alert, state explicitly that there is
nothing to correlate; do not invent a pattern. If there are
multiple alerts, look for relationships such as:

- The same user across multiple alerts
- The same IP or host involved
- Time proximity suggesting a campaign or sequence

Summarize any correlations and state whether this looks like a single
isolated event or part of a broader pattern. Keep the answer to one or
two short paragraphs.`

// Correlator synthesizes whether multiple parsed alerts represent an
// isolated event or a related pattern.
type Correlator struct {
	provider llm.Provider
}

// NewCorrelator creates the correlation stage.
func NewCorrelator(provider llm.Provider) *Correlator {
	return &Correlator{provider: provider}
}

func (c *Correlator) Name() string { return "correlator" }

// Run correlates the parsed alert descriptions.
func (c *Correlator) Run(ctx context.Context, input string) (string, error) {
	prompt := fmt.Sprintf("Parsed alerts:\n%s\n\nAssess how these alerts relate.", input)
	out, err := c.provider.Invoke(ctx, correlatorSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("correlator stage: %w", err)
	}
	return out, nil
}
