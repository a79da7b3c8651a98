package storage

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached fronts a slower backend with an LRU read cache. Writes and removals
// reach the backend before the cache is updated. Cache fills never overlap a
// write, so a read racing a removal cannot cache the removed value.
type Cached struct {
	mu      sync.RWMutex
	backend Storage
	cache   *lru.Cache[string, []byte]
}

// NewCached wraps backend with a cache holding up to size entries.
func NewCached(backend Storage, size int) (*Cached, error) {
	if backend == nil {
		return nil, fmt.Errorf("storage: cached backend is required")
	}
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("storage: build lru: %w", err)
	}
	return &Cached{backend: backend, cache: cache}, nil
}

func (c *Cached) Get(key string) ([]byte, error) {
	if value, ok := c.cache.Get(key); ok {
		return cloneBytes(value), nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, err := c.backend.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneBytes(value))
	return value, nil
}

func (c *Cached) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backend.Set(key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, cloneBytes(value))
	return nil
}

func (c *Cached) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.backend.Remove(key)
	c.cache.Remove(key)
	return err
}

func (c *Cached) Keys(prefix string) ([]string, error) {
	return Keys(c.backend, prefix)
}

// Purge drops every cached entry without touching the backend.
func (c *Cached) Purge() {
	c.cache.Purge()
}
