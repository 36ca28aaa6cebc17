// Package llm defines the boundary to the model-inference
// collaborator. The provider owns its own retry/backoff policy; a
// returned error is terminal for the calling turn.
package llm

import "context"

// Provider is the interface for any model-inference backend.
type Provider interface {
	// Invoke sends a system instruction and prompt, returning the
	// generated text. Errors wrap ErrTransient when retries on a
	// retryable status class were exhausted, ErrFatal otherwise.
	Invoke(ctx context.Context, system, prompt string) (string, error)
}
