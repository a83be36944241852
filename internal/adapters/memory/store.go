// Package memory provides in-memory implementations of the engine ports,
// used by tests and single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Store implements ports.StateStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save persists the snapshot. Snapshots are serialized on write so callers
// can never mutate stored state through retained pointers.
func (s *Store) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = raw
	return nil
}

// Load retrieves the snapshot for a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
