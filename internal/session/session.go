// Package session provides the per-incident conversation state for
// triage. A Session wraps a mutable key-value state mapping plus the
// append-only event sequence stored inside it; the Store hands out
// at most one session per incident id.
package session

import (
	"context"
	"sync"
	"time"
)

// State is the mutable session-state mapping: string keys, JSON
// compatible values. Later writes to a key replace earlier ones.
type State map[string]any

// Session is one logical, stateful conversation scoped to a single
// alert-triage investigation. Turns for the same incident must hold
// the session lock for their full duration; concurrent unserialized
// writes to the same session are out of contract.
type Session struct {
	ID         string
	IncidentID string
	State      State
	CreatedAt  time.Time

	mu sync.Mutex
}

// Lock serializes turns against this session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// View returns a shallow copy of the state mapping taken under the
// session lock, safe to read while other turns run.
func (s *Session) View() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(State, len(s.State))
	for k, v := range s.State {
		cp[k] = v
	}
	return cp
}

// Store hands out sessions keyed by incident id.
type Store interface {
	// Create makes a new session for the incident. Creating an
	// incident that already has a session returns the existing one.
	Create(ctx context.Context, incidentID string) (*Session, error)

	// Get returns the session for the incident, if one exists.
	Get(ctx context.Context, incidentID string) (*Session, bool, error)
}
