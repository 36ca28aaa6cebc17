// Package action defines the closed set of triage recommendations.
package action

// Action is a permitted triage recommendation.
type Action string

const (
	// Escalate means hand the incident to a higher tier for response.
	Escalate Action = "ESCALATE"

	// Monitor means keep watching without taking action yet.
	Monitor Action = "MONITOR"

	// Close means the incident is benign or resolved.
	Close Action = "CLOSE"

	// NeedsMoreInfo means the evidence is insufficient to decide.
	// It is also the fallback for any value outside the closed set.
	NeedsMoreInfo Action = "NEEDS_MORE_INFO"
)

// All returns every permitted action.
func All() []Action {
	return []Action{Escalate, Monitor, Close, NeedsMoreInfo}
}

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case Escalate, Monitor, Close, NeedsMoreInfo:
		return true
	}
	return false
}

// Normalize maps a candidate string into the closed action set.
// Matching is a case-sensitive exact comparison; any non-member
// falls back to NeedsMoreInfo. Normalize is total and pure - it is
// the last line of defense against a producer emitting a malformed
// action string.
func Normalize(candidate string) Action {
	a := Action(candidate)
	if a.Valid() {
		return a
	}
	return NeedsMoreInfo
}
