package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps saves in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[string]*Save
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[string]*Save)}
}

// Put stores a save by name.
func (s *MemoryStore) Put(ctx context.Context, save *Save) error {
	if err := prepare(save); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.saves[save.Name]; ok {
		save.ID = prev.ID
		save.CreatedAt = prev.CreatedAt
	}
	cp := *save
	s.saves[save.Name] = &cp
	return nil
}

// Get retrieves a save by name.
func (s *MemoryStore) Get(ctx context.Context, name string) (*Save, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	save, ok := s.saves[name]
	if !ok {
		return nil, notFound(name)
	}
	cp := *save
	return &cp, nil
}

// List returns all saves, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]*Save, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Save, 0, len(s.saves))
	for _, save := range s.saves {
		cp := *save
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a save by name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saves[name]; !ok {
		return notFound(name)
	}
	delete(s.saves, name)
	return nil
}

// Close does nothing for the memory backend.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
