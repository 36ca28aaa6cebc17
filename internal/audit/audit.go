// Package audit maintains the append-only structured event trail inside
// session state. Events are created only here; no other component may
// splice or reorder the sequence.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/mwill20/MultiAgent-SOC/internal/session"
)

// StateKey is the reserved session-state key holding the event
// sequence. Once initialized it is only ever appended to.
const StateKey = "events"

// Absent marks a requested-but-missing key in a state snapshot, so a
// reader can distinguish "not present" from "present and empty".
const Absent = "<absent>"

// ErrEncoding means an event's details payload is not JSON
// serializable and the event was not appended.
var ErrEncoding = xerrors.New("audit: event details not serializable")

// Type enumerates the kinds of structured events.
type Type string

const (
	TypeToolCall          Type = "tool_call"
	TypeAgentCall         Type = "agent_call"
	TypeAgentOutput       Type = "agent_output"
	TypeStateChange       Type = "state_change"
	TypeStateSnapshot     Type = "state_snapshot"
	TypeGuardrailResponse Type = "guardrail_response"
)

// Event is one immutable audit-log entry.
type Event struct {
	Timestamp string         `json:"timestamp"`
	Type      Type           `json:"event_type"`
	Actor     string         `json:"actor"`
	Details   map[string]any `json:"details"`
}

// Events returns the session's event sequence, or nil if none has
// been recorded yet. The returned slice is the live sequence; callers
// read it, they do not modify it.
func Events(state session.State) []Event {
	events, _ := state[StateKey].([]Event)
	return events
}

// Record appends a structured event to the session's event sequence,
// lazily initializing it on first use. It fails only when details is
// not JSON-serializable, in which case nothing is appended.
func Record(state session.State, typ Type, actor string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	if _, err := json.Marshal(details); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	events := Events(state)
	state[StateKey] = append(events, Event{
		Timestamp: nextTimestamp(events),
		Type:      typ,
		Actor:     actor,
		Details:   details,
	})
	return nil
}

// Snapshot records a state-snapshot event carrying the current values
// of the requested keys. Missing keys map to the Absent marker rather
// than being omitted.
func Snapshot(state session.State, actor string, keys []string) error {
	snap := make(map[string]any, len(keys))
	for _, key := range keys {
		if v, ok := state[key]; ok {
			snap[key] = v
		} else {
			snap[key] = Absent
		}
	}
	return Record(state, TypeStateSnapshot, actor, map[string]any{"state": snap})
}

// timestampLayout is ISO-8601 UTC with fixed-width fractional seconds,
// so lexicographic order on timestamps matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// nextTimestamp returns now in ISO-8601 UTC, clamped so timestamps
// never decrease within a session even if the wall clock steps back.
func nextTimestamp(events []Event) string {
	ts := time.Now().UTC().Format(timestampLayout)
	if n := len(events); n > 0 && ts < events[n-1].Timestamp {
		return events[n-1].Timestamp
	}
	return ts
}
