package cart

import (
	"context"
	"sync"
)

// Store is the persistence port for carts: read on load, write on every
// mutation, keyed per shopper (user ID or session ID).
type Store interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart) error
	Clear(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Load(ctx context.Context, key string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[key]
	if !ok {
		return New(), nil
	}
	copied := Cart{Items: append([]Item(nil), c.Items...)}
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = Cart{Items: append([]Item(nil), c.Items...)}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
