package guardrail

import (
	"context"
	"fmt"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
)

// Heuristic is the in-process validator. It is deterministic and
// synchronous: pattern rules for the two unsafe classes, then semantic
// normalization of the proposed action.
type Heuristic struct{}

// NewHeuristic creates the in-process validator.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Validate applies the decision policy in priority order: injection
// detection, fabricated-execution detection, then normalization. The
// returned NormalizedAction is always re-checked against the action
// schema before use.
func (h *Heuristic) Validate(_ context.Context, req *Request) (*Response, error) {
	texts := []string{req.ProposedAction, req.EvidenceSummary, req.TriageSummary}

	// Injection takes precedence over everything else.
	if pattern, ok := matchAny(injectionPatterns, texts...); ok {
		return finish(&Response{
			Allow:            false,
			NormalizedAction: action.NeedsMoreInfo,
			Rationale: fmt.Sprintf(
				"instruction-override language detected (matched %q); refusing to act on this input", pattern),
		}), nil
	}

	// Completed-tense remediation claims cannot be verified. The
	// underlying evidence may still warrant attention, so downgrade to
	// MONITOR rather than adopting the claim.
	if pattern, ok := matchAny(fabricationPatterns, texts...); ok {
		return finish(&Response{
			Allow:            false,
			NormalizedAction: action.Monitor,
			Rationale: fmt.Sprintf(
				"justification claims an already-executed remediation (matched %q); no such action has been verified, recommending continued monitoring", pattern),
		}), nil
	}

	normalized := classifyIntent(req.ProposedAction)
	return finish(&Response{
		Allow:            true,
		NormalizedAction: normalized,
		Rationale:        fmt.Sprintf("proposed action normalized to %s", normalized),
	}), nil
}

// finish applies the action schema as a final safety net on whatever
// the validator produced.
func finish(resp *Response) *Response {
	resp.NormalizedAction = action.Normalize(string(resp.NormalizedAction))
	return resp
}
