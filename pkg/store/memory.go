package store

import (
	"context"
	"sync"

	"github.com/matzehuels/tierviz/pkg/chart"
)

// MemoryStore keeps layouts in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]chart.Layout
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]chart.Layout)}
}

func (s *MemoryStore) Save(ctx context.Context, l chart.Layout) error {
	if !validID(l.ID) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.ID] = l
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (chart.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[id]
	if !ok {
		return chart.Layout{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]chart.Layout, error) {
	s.mu.RLock()
	out := make([]chart.Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, l)
	}
	s.mu.RUnlock()
	return filterSorted(out, opts), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[id]; !ok {
		return ErrNotFound
	}
	delete(s.layouts, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
