package cache

import (
	"context"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore fronts another store with an in-process LRU so repeated tags
// within one build skip the backing store.
type MemoryStore struct {
	lru     *lru.Cache[string, string]
	backing Admin
}

// NewMemoryStore wraps backing with an LRU holding up to size entries.
func NewMemoryStore(backing Admin, size int) (*MemoryStore, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &MemoryStore{lru: c, backing: backing}, nil
}

// Location reports the backing store's location.
func (s *MemoryStore) Location() string {
	return s.backing.Location()
}

// Get checks memory first, then the backing store.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if html, ok := s.lru.Get(key); ok {
		return html, true, nil
	}

	html, ok, err := s.backing.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	s.lru.Add(key, html)
	return html, true, nil
}

// Put writes through to the backing store, then memory.
func (s *MemoryStore) Put(ctx context.Context, key, html string) error {
	if err := s.backing.Put(ctx, key, html); err != nil {
		return err
	}
	s.lru.Add(key, html)
	return nil
}

// Delete removes key from both layers.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.lru.Remove(key)
	return s.backing.Delete(ctx, key)
}

// Len reports the backing store's entry count.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	return s.backing.Len(ctx)
}

// Close closes the backing store when it holds resources.
func (s *MemoryStore) Close() error {
	if c, ok := s.backing.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
