package triage

import (
	"time"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
	"github.com/mwill20/MultiAgent-SOC/internal/audit"
	"github.com/mwill20/MultiAgent-SOC/internal/session"
)

// Phase tracks where a turn is in the pipeline. The topology is fixed:
// correlation may be skipped, and no path bypasses validation.
type Phase string

const (
	PhaseLoading     Phase = "LOADING"
	PhaseParsing     Phase = "PARSING"
	PhaseCorrelating Phase = "CORRELATING"
	PhaseProposing   Phase = "PROPOSING"
	PhaseValidating  Phase = "VALIDATING"
	PhaseFinalized   Phase = "FINALIZED"
)

// Risk is the assessed risk level of an incident.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Reserved session-state slots written by the orchestrator.
const (
	KeyRawAlerts          = "raw_alerts"
	KeyParsedAlerts       = "parsed_alerts"
	KeyCorrelationSummary = "correlation_summary"
	KeyTriageSummary      = "triage_summary"
)

// TurnRequest asks for one triage turn against an incident session.
type TurnRequest struct {
	IncidentID string `json:"incident_id"`
	AlertID    string `json:"alert_id,omitempty"`
	Query      string `json:"query,omitempty"`
}

// Proposal is the orchestrator's candidate outcome before validation.
// ProposedAction is free text on purpose: the guardrail normalizes it
// into the closed action set.
type Proposal struct {
	Narrative      string
	Risk           Risk
	ProposedAction string
	Justification  string
}

// Summary is the finalized triage outcome written to the
// triage_summary state slot. Action is always a member of the closed
// set and Justification is never empty.
type Summary struct {
	IncidentID         string        `json:"incident_id"`
	TurnID             string        `json:"turn_id"`
	Narrative          string        `json:"narrative"`
	Risk               Risk          `json:"risk_level"`
	Action             action.Action `json:"action"`
	Justification      string        `json:"justification"`
	GuardrailRationale string        `json:"guardrail_rationale"`
	Overridden         bool          `json:"overridden"`
	AlertCount         int           `json:"alert_count"`
	Correlated         bool          `json:"correlated"`
	CompletedAt        time.Time     `json:"completed_at"`
	Duration           float64       `json:"duration_seconds"`
}

// SessionView is a read-only snapshot of a session for API consumers.
// Events are split out of the state mapping they live in.
type SessionView struct {
	IncidentID string        `json:"incident_id"`
	SessionID  string        `json:"session_id"`
	CreatedAt  time.Time     `json:"created_at"`
	State      session.State `json:"state"`
	Events     []audit.Event `json:"events"`
}
