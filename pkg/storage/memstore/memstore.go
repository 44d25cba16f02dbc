// Package memstore is an in-memory storage.Adapter, used in tests and as
// the default backend when no durable adapter is configured.
package memstore

import (
	"context"
	"sync"

	"github.com/aeonsync/core/pkg/storage"
)

// Store is a mutex-guarded in-memory storage.Adapter.
type Store struct {
	mu      sync.Mutex
	records map[string]storage.Record
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]storage.Record)}
}

func (s *Store) Snapshot(_ context.Context, records []storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]storage.Record, len(records))
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *Store) Restore(_ context.Context) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) Close() error { return nil }
