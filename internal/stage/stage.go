// Package stage defines the pipeline steps that turn alert data into
// progressively higher-level summaries. Stages are pure transforms:
// they receive their input explicitly and return their output; the
// orchestrator owns all session-state reads and writes.
package stage

import "context"

// Stage is one pipeline step.
type Stage interface {
	// Name identifies the stage as the actor on its audit events and
	// the session-state slot convention it feeds.
	Name() string

	// Run transforms the input into this stage's summary text.
	Run(ctx context.Context, input string) (string, error)
}
