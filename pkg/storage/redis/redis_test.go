package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-persist/pkg/storage/redis"
	"github.com/goliatone/go-persist/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestRedis skips when no server is reachable.
func openTestRedis(t *testing.T, ttl time.Duration) *redis.Storage {
	t.Helper()
	cfg := redis.DefaultConfig()
	if addr := os.Getenv("PERSIST_TEST_REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.DB = 15
	cfg.Timeout = 2 * time.Second
	cfg.KeyPrefix = fmt.Sprintf("test:persist:%d:", time.Now().UnixNano())
	cfg.TTL = ttl

	backend, err := redis.Open(context.Background(), cfg)
	if err != nil {
		t.Skip("Redis is not available for testing:", err)
	}
	t.Cleanup(func() {
		keys, _ := backend.Keys("")
		for _, key := range keys {
			_ = backend.Remove(key)
		}
		_ = backend.Close()
	})
	return backend
}

func TestRedisConformance(t *testing.T) {
	storagetest.Run(t, openTestRedis(t, 0), "")
}

func TestRedisKeysAreScopedToPrefix(t *testing.T) {
	backend := openTestRedis(t, time.Minute)

	require.NoError(t, backend.Set("app/one", []byte(`1`)))
	require.NoError(t, backend.Set("app/two", []byte(`2`)))
	require.NoError(t, backend.Set("other", []byte(`3`)))

	keys, err := backend.Keys("app/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app/one", "app/two"}, keys)
}
