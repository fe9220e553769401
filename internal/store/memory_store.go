package store

import (
	"context"
	"sync"

	"github.com/shiftsync/shiftsync_backend/internal/models"
)

// MemoryStore is an in-process ShiftStore used in tests and for running
// the server without redis. A single mutex serializes FindAndUpdate,
// which gives it the same per-document atomicity as the redis store.
type MemoryStore struct {
	mu     sync.RWMutex
	shifts map[string]*models.Shift
	order  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shifts: make(map[string]*models.Shift)}
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return shift.Clone(), nil
}

func (m *MemoryStore) FindAll(_ context.Context, limit int) ([]*models.Shift, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Shift
	for _, id := range m.order {
		if shift, ok := m.shifts[id]; ok {
			out = append(out, shift.Clone())
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) FindWhere(_ context.Context, match func(*models.Shift) bool) ([]*models.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Shift
	for _, id := range m.order {
		if shift, ok := m.shifts[id]; ok && match(shift) {
			out = append(out, shift.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) Insert(_ context.Context, shift *models.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[shift.ID]; !ok {
		m.order = append(m.order, shift.ID)
	}
	m.shifts[shift.ID] = shift.Clone()
	return nil
}

func (m *MemoryStore) FindAndUpdate(_ context.Context, id string, mutate func(*models.Shift)) (*models.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, ErrNotFound
	}
	mutate(shift)
	return shift.Clone(), nil
}

func (m *MemoryStore) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return ErrNotFound
	}
	delete(m.shifts, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
