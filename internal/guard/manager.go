package guard

import (
	"context"
	"sync"

	"codemend/internal/protect"
	"codemend/internal/session"
	"codemend/internal/trace"
)

// Manager hands out one guard per session id. Sessions are fully
// independent; the lock only covers get-or-create, never edit operations.
type Manager struct {
	mu       sync.Mutex
	store    session.Store
	recorder *trace.Recorder
	guards   map[string]*Guard
}

// NewManager builds a manager over store.
func NewManager(store session.Store, recorder *trace.Recorder) *Manager {
	return &Manager{
		store:    store,
		recorder: recorder,
		guards:   map[string]*Guard{},
	}
}

// Guard returns the guard for sessionID, restoring a persisted registry or
// creating a fresh one.
func (m *Manager) Guard(ctx context.Context, sessionID string) (*Guard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.guards[sessionID]; ok {
		return g, nil
	}

	registry, found, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		registry = protect.NewRegistry()
		if err := m.store.Put(ctx, sessionID, registry); err != nil {
			return nil, err
		}
	}

	persist := func(reg *protect.Registry) error {
		return m.store.Put(context.Background(), sessionID, reg)
	}
	g := New(sessionID, registry, m.recorder, persist)
	m.guards[sessionID] = g
	return g, nil
}

// Release resets and forgets a session. Invoked at conversation boundaries.
func (m *Manager) Release(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.guards, sessionID)
	m.mu.Unlock()
	return m.store.Delete(ctx, sessionID)
}
