package store

import (
	"context"
	"sync"

	"lumira/pkg/domain"
)

// MemoryStore keeps readings in-process. Used by tests and local runs
// without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	readings map[string]domain.Reading
	order    []string
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{readings: make(map[string]domain.Reading)}
}

// SaveReading stores the reading unless the id already exists.
func (m *MemoryStore) SaveReading(_ context.Context, r domain.Reading) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.readings[r.ID]; !exists {
		m.readings[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return r.ID, nil
}

// GetReading returns one reading by id.
func (m *MemoryStore) GetReading(_ context.Context, id string) (domain.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reading, ok := m.readings[id]
	if !ok {
		return domain.Reading{}, ErrNotFound
	}
	return reading, nil
}

// ListReadingsByOwner returns the owner's readings, newest first.
func (m *MemoryStore) ListReadingsByOwner(_ context.Context, ownerID string, limit int) ([]domain.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Reading, 0)
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		reading := m.readings[m.order[i]]
		if reading.OwnerID == ownerID {
			out = append(out, reading)
		}
	}
	return out, nil
}
