package store

import (
	"context"
	"sync"

	"github.com/hospigo/fleetd/core/fleet"
)

// MemoryStore is a process-local snapshot store. State is lost on restart,
// which matches a fresh dashboard session.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]fleet.PersistedState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]fleet.PersistedState{}}
}

// Load returns a copy of the stored snapshot.
func (s *MemoryStore) Load(context.Context) (map[string]fleet.PersistedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]fleet.PersistedState, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(_ context.Context, snap map[string]fleet.PersistedState) error {
	next := make(map[string]fleet.PersistedState, len(snap))
	for k, v := range snap {
		next[k] = v
	}
	s.mu.Lock()
	s.data = next
	s.mu.Unlock()
	return nil
}
