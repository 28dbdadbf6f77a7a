// Package session keeps per-session key/value state shared between the
// upload and viewer pages.
package session

import (
	"context"
	"sync"

	"ppm/internal/port"
)

// MemoryStore is a process-local SessionStore. State lives until the
// process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

var _ port.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.sessions[sessionID]
	if !ok {
		values = make(map[string]string)
		s.sessions[sessionID] = values
	}
	values[key] = value
	return nil
}
