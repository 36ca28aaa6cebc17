package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
	"github.com/mwill20/MultiAgent-SOC/internal/alertstore"
	"github.com/mwill20/MultiAgent-SOC/internal/audit"
	"github.com/mwill20/MultiAgent-SOC/internal/guardrail"
	"github.com/mwill20/MultiAgent-SOC/internal/session"
	"github.com/mwill20/MultiAgent-SOC/internal/stage"
)

// Actor identifiers on audit events.
const (
	actorOrchestrator = "root_triage"
	actorAlertStore   = "alert_store"
	actorGuardrail    = "guardrail"
)

// Hooks are optional instrumentation callbacks invoked during a turn.
type Hooks struct {
	OnStage     func(name string, seconds float64)
	OnGuardrail func(verdict string)
}

// Orchestrator runs the fixed triage pipeline for one turn at a time.
// It holds a statically-typed set of stages and owns every read and
// write of session state; stages never touch the session directly.
type Orchestrator struct {
	alerts     *alertstore.Store
	parser     stage.Stage
	correlator stage.Stage
	validator  guardrail.Validator
	logger     log.Logger
	hooks      Hooks
}

// NewOrchestrator wires the pipeline.
func NewOrchestrator(alerts *alertstore.Store, parser, correlator stage.Stage, validator guardrail.Validator, logger log.Logger, hooks Hooks) *Orchestrator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Orchestrator{
		alerts:     alerts,
		parser:     parser,
		correlator: correlator,
		validator:  validator,
		logger:     logger,
		hooks:      hooks,
	}
}

// RunTurn executes one full pipeline pass against the session. The
// caller must hold the session lock for the duration of the call.
// Loading failures abort before any state mutation; stage failures
// are terminal for the turn. The guardrail verdict is applied before
// finalization on every path.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *session.Session, req *TurnRequest) (*Summary, error) {
	start := time.Now()
	turnID := ulid.Make().String()
	state := sess.State

	L := o.logger.With("incident_id", sess.IncidentID, "turn_id", turnID)
	L.Info(ctx, "turn start", "phase", PhaseLoading, "alert_id", req.AlertID)

	// LOADING - NotFound/Malformed abort the turn before any state
	// mutation, so a failed load leaves no partial raw_alerts write.
	alerts, err := o.alerts.Load(req.AlertID)
	if err != nil {
		return nil, err
	}
	if err := audit.Record(state, audit.TypeAgentCall, actorOrchestrator, map[string]any{
		"alert_id": req.AlertID,
		"query":    req.Query,
	}); err != nil {
		return nil, err
	}
	state[KeyRawAlerts] = alerts
	if err := audit.Record(state, audit.TypeToolCall, actorAlertStore, map[string]any{
		"alert_id": req.AlertID,
		"count":    len(alerts),
	}); err != nil {
		return nil, err
	}

	// PARSING
	L.Info(ctx, "entering phase", "phase", PhaseParsing, "alerts", len(alerts))
	rawJSON, err := json.Marshal(alerts)
	if err != nil {
		return nil, fmt.Errorf("marshal raw alerts: %w", err)
	}
	parsed, err := o.runStage(ctx, state, o.parser, string(rawJSON))
	if err != nil {
		return nil, err
	}
	state[KeyParsedAlerts] = parsed

	// CORRELATING - entered only when more than one alert was loaded;
	// a single unambiguous alert goes straight to proposing.
	correlation := ""
	if len(alerts) > 1 {
		L.Info(ctx, "entering phase", "phase", PhaseCorrelating)
		correlation, err = o.runStage(ctx, state, o.correlator, parsed)
		if err != nil {
			return nil, err
		}
		state[KeyCorrelationSummary] = correlation
	}

	// PROPOSING
	L.Info(ctx, "entering phase", "phase", PhaseProposing)
	prop := propose(alerts, parsed, correlation)

	// VALIDATING - no path reaches FINALIZED without this. A failed
	// guardrail call must not default to allow; it finalizes with a
	// forced-safe action and a rationale naming the failure.
	L.Info(ctx, "entering phase", "phase", PhaseValidating, "proposed_action", prop.ProposedAction)
	greq := &guardrail.Request{
		ProposedAction:  prop.ProposedAction,
		EvidenceSummary: evidenceSummary(alerts, correlation),
		TriageSummary:   prop.Narrative + "\n\n" + prop.Justification,
	}
	gresp, gerr := o.validator.Validate(ctx, greq)
	if gerr != nil {
		L.Error(ctx, gerr, "guardrail unreachable, forcing safe default")
		o.observeGuardrail("unreachable")
		gresp = &guardrail.Response{
			Allow:            false,
			NormalizedAction: action.NeedsMoreInfo,
			Rationale:        fmt.Sprintf("guardrail validation unavailable (%v); deferring with a safe default", gerr),
		}
	} else if gresp.Allow {
		o.observeGuardrail("allowed")
	} else {
		o.observeGuardrail("vetoed")
	}
	if err := audit.Record(state, audit.TypeGuardrailResponse, actorGuardrail, map[string]any{
		"request":  greq,
		"response": gresp,
	}); err != nil {
		return nil, err
	}

	final := action.Normalize(string(gresp.NormalizedAction))
	narrative := prop.Narrative
	justification := prop.Justification
	if !gresp.Allow {
		narrative += "\n\nGuardrail override: " + gresp.Rationale
		justification = gresp.Rationale
	}

	// FINALIZED
	summary := &Summary{
		IncidentID:         sess.IncidentID,
		TurnID:             turnID,
		Narrative:          narrative,
		Risk:               prop.Risk,
		Action:             final,
		Justification:      justification,
		GuardrailRationale: gresp.Rationale,
		Overridden:         !gresp.Allow,
		AlertCount:         len(alerts),
		Correlated:         correlation != "",
		CompletedAt:        time.Now().UTC(),
		Duration:           time.Since(start).Seconds(),
	}
	state[KeyTriageSummary] = summary
	if err := audit.Record(state, audit.TypeAgentOutput, actorOrchestrator, map[string]any{
		"triage_summary": summary,
	}); err != nil {
		return nil, err
	}
	if err := audit.Snapshot(state, actorOrchestrator, []string{
		KeyRawAlerts, KeyParsedAlerts, KeyCorrelationSummary, KeyTriageSummary,
	}); err != nil {
		return nil, err
	}

	L.Info(ctx, "turn finalized",
		"phase", PhaseFinalized,
		"action", summary.Action,
		"risk", summary.Risk,
		"overridden", summary.Overridden,
		"duration", summary.Duration,
	)
	return summary, nil
}

// runStage times one stage, records its output event, and returns its
// output.
func (o *Orchestrator) runStage(ctx context.Context, state session.State, st stage.Stage, input string) (string, error) {
	stageStart := time.Now()
	out, err := st.Run(ctx, input)
	if o.hooks.OnStage != nil {
		o.hooks.OnStage(st.Name(), time.Since(stageStart).Seconds())
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", st.Name(), err)
	}
	if err := audit.Record(state, audit.TypeAgentOutput, st.Name(), map[string]any{"output": out}); err != nil {
		return "", err
	}
	return out, nil
}

func (o *Orchestrator) observeGuardrail(verdict string) {
	if o.hooks.OnGuardrail != nil {
		o.hooks.OnGuardrail(verdict)
	}
}

// severityRank orders the severity labels seen in alert sources.
var severityRank = map[string]int{
	"info":     0,
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

// propose synthesizes the candidate outcome from parsed and correlated
// content. The proposed action is intent language, not a schema
// member; normalization is the guardrail's job.
func propose(alerts []alertstore.Alert, parsed, correlation string) Proposal {
	narrative := parsed
	if correlation != "" {
		narrative += "\n\nCorrelation: " + correlation
	}

	if len(alerts) == 0 {
		return Proposal{
			Narrative:      "No alerts matched the request.",
			Risk:           RiskLow,
			ProposedAction: "Cannot assess without matching alert data; need more information",
			Justification:  "no alerts matched the requested identifier",
		}
	}

	maxRank := 0
	maxSeverity := "info"
	for _, a := range alerts {
		if r := severityRank[strings.ToLower(a.Severity)]; r > maxRank {
			maxRank = r
			maxSeverity = strings.ToLower(a.Severity)
		}
	}

	switch {
	case maxRank >= severityRank["high"]:
		return Proposal{
			Narrative:      narrative,
			Risk:           RiskHigh,
			ProposedAction: "Escalate to Tier 2 for immediate investigation",
			Justification:  fmt.Sprintf("%s-severity alert activity warrants escalation", maxSeverity),
		}
	case maxRank >= severityRank["medium"]:
		return Proposal{
			Narrative:      narrative,
			Risk:           RiskMedium,
			ProposedAction: "Suspicious activity; keep the incident under active monitoring",
			Justification:  fmt.Sprintf("%s-severity activity is suspicious but not confirmed", maxSeverity),
		}
	default:
		return Proposal{
			Narrative:      narrative,
			Risk:           RiskLow,
			ProposedAction: "Likely benign; close the incident",
			Justification:  fmt.Sprintf("only %s-severity activity observed", maxSeverity),
		}
	}
}

// evidenceSummary condenses what was loaded and correlated for the
// guardrail request.
func evidenceSummary(alerts []alertstore.Alert, correlation string) string {
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	summary := fmt.Sprintf("%d alert(s) loaded: %s", len(alerts), strings.Join(ids, ", "))
	if correlation != "" {
		summary += "; correlation: " + correlation
	}
	return summary
}
