// Package memory is an in-memory audit store for tests.
package memory

import (
	"context"
	"sync"

	audit "dossier/pkg/platform/audit"
)

// Store keeps appended events in order.
type Store struct {
	mu     sync.Mutex
	events []audit.Event

	// FailNext makes the next Append return this error, then resets.
	// Lets tests exercise the audit-failure-is-non-fatal path.
	FailNext error
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
