package store

import (
	"context"
	"sync"

	"github.com/koios/api-widget/pkg/models"
)

// MemoryStore keeps the snapshot in process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a store seeded with values (may be nil).
func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStore) Read(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SnapshotFromValues(s.values), nil
}

func (s *MemoryStore) Write(ctx context.Context, values map[string]string) error {
	if err := ValidateValues(values); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}
