package persist

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultProgramCacheSize bounds the cache created when none is configured.
const DefaultProgramCacheSize = 128

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used by the filter evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *pluginConfig) {
		cfg.programCache = cache
	}
}

type lruProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewLRUProgramCache returns a ProgramCache keeping the size most recently
// used programs.
func NewLRUProgramCache(size int) (ProgramCache, error) {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("persist: program cache: %w", err)
	}
	return &lruProgramCache{cache: cache}, nil
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}
