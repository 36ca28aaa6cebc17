// Package guardrail validates proposed triage actions before they are
// finalized. A validator can veto a proposal and downgrade it to a
// safe default; its own rationale is advisory only and never claims to
// have executed anything.
package guardrail

import (
	"context"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
)

// Request carries one proposed action and its justifying evidence.
// Built once per triage turn, immediately before finalization.
type Request struct {
	ProposedAction  string `json:"proposed_action"`
	EvidenceSummary string `json:"evidence_summary"`
	TriageSummary   string `json:"triage_summary"`
}

// Response is the validator's verdict. NormalizedAction is always a
// member of the closed action set.
type Response struct {
	Allow            bool          `json:"allow"`
	NormalizedAction action.Action `json:"normalized_action"`
	Rationale        string        `json:"rationale"`
}

// Validator decides whether a proposed action may be finalized. The
// in-process and remote variants share this contract; selection is a
// deployment concern.
type Validator interface {
	Validate(ctx context.Context, req *Request) (*Response, error)
}
