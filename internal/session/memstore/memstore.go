// Package memstore provides an in-memory implementation of
// session.Store. Sessions live for the process lifetime and are never
// garbage-collected.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mwill20/MultiAgent-SOC/internal/session"
)

// Store holds sessions in memory, keyed by incident id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{sessions: make(map[string]*session.Session)}
}

// Create returns the session for the incident, creating it on first
// use. The same *Session is returned for every call with the same
// incident id, so its lock serializes turns.
func (s *Store) Create(_ context.Context, incidentID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[incidentID]; ok {
		return existing, nil
	}
	sess := &session.Session{
		ID:         ulid.Make().String(),
		IncidentID: incidentID,
		State:      make(session.State),
		CreatedAt:  time.Now().UTC(),
	}
	s.sessions[incidentID] = sess
	return sess, nil
}

// Get retrieves the session for an incident.
func (s *Store) Get(_ context.Context, incidentID string) (*session.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[incidentID]
	return sess, ok, nil
}
