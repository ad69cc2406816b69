// Package session persists per-session protected-identifier registries.
// Any storage mechanism works: the guard layer only needs get and put.
package session

import (
	"context"
	"sync"

	"codemend/internal/protect"
)

// Store defines the persistence surface required by the guard manager.
type Store interface {
	// Get retrieves the registry for a session, reporting whether one exists.
	Get(ctx context.Context, sessionID string) (*protect.Registry, bool, error)

	// Put saves the registry for a session, replacing any previous record.
	Put(ctx context.Context, sessionID string, reg *protect.Registry) error

	// Delete removes a session's registry. Invoked at session boundaries.
	Delete(ctx context.Context, sessionID string) error

	Close() error
}

// MemoryStore keeps registries in process memory. Suitable for single-process
// embedding and for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*protect.Registry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*protect.Registry{}}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*protect.Registry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.sessions[sessionID]
	return reg, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, reg *protect.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = reg
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
