package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/burstcov/internal/domain/model"
	"github.com/okian/burstcov/pkg/metrics"
)

const defaultCapacity = 1024

// MemoryStore is an insertion-ordered, in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	products []model.BurstProduct
	seen     map[string]struct{}
	capacity int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.products = make([]model.BurstProduct, 0, s.capacity)
	s.seen = make(map[string]struct{}, s.capacity)
	return s
}

// Add implements Store. An empty ProductID rejects the whole batch before
// anything is stored.
func (s *MemoryStore) Add(ctx context.Context, products []model.BurstProduct) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	for i, p := range products {
		if p.ProductID == "" {
			return 0, 0, fmt.Errorf("%w: item %d", ErrEmptyProductID, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added, duplicates int
	for _, p := range products {
		if _, ok := s.seen[p.ProductID]; ok {
			duplicates++
			continue
		}
		s.seen[p.ProductID] = struct{}{}
		s.products = append(s.products, p)
		added++
	}
	metrics.UpdateStoredBursts(len(s.products))
	return added, duplicates, nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) []model.BurstProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BurstProduct, len(s.products))
	copy(out, s.products)
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Reset implements Store.
func (s *MemoryStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make([]model.BurstProduct, 0, s.capacity)
	s.seen = make(map[string]struct{}, s.capacity)
	metrics.UpdateStoredBursts(0)
}
