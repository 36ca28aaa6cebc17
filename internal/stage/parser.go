package stage

import (
	"context"
	"fmt"

	"github.com/mwill20/MultiAgent-SOC/internal/llm"
)

const parserSystemPrompt = `You are a SOC log parsing specialist.

You receive raw security alerts as a JSON array. For each alert explain
clearly, in language a Tier 1 analyst can understand:

- What happened
- Who or what was involved (user, IP, host, device)
- Why the alert likely fired

Ground every statement strictly in fields present in the input. Do not
mention alerts, users, hosts, or addresses that do not appear in the
data, and do not speculate beyond it.`

// Parser turns raw alert JSON into a per-alert natural-language
// explanation.
type Parser struct {
	provider llm.Provider
}

// NewParser creates the log-parsing stage.
func NewParser(provider llm.Provider) *Parser {
	return &Parser{provider: provider}
}

func (p *Parser) Name() string { return "log_parser" }

// Run explains the given raw alert JSON.
func (p *Parser) Run(ctx context.Context, input string) (string, error) {
	prompt := fmt.Sprintf("Raw alerts:\n%s\n\nExplain these alerts.", input)
	out, err := p.provider.Invoke(ctx, parserSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("parser stage: %w", err)
	}
	return out, nil
}
