// Package storagetest holds the behaviour every storage.Storage backend must
// share, so backend packages can run one suite against their implementation.
package storagetest

import (
	"fmt"
	"sort"
	"testing"

	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises Get/Set/Remove and, when supported, Keys against backend.
// Keys written by the suite start with prefix so shared backends can be
// reused between runs.
func Run(t *testing.T, backend storage.Storage, prefix string) {
	t.Helper()
	key := func(name string) string { return fmt.Sprintf("%s%s", prefix, name) }

	t.Run("missing key", func(t *testing.T) {
		_, err := backend.Get(key("missing"))
		require.Error(t, err)
		assert.True(t, storage.IsNotFound(err), "expected ErrKeyNotFound, got %v", err)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, backend.Set(key("count"), []byte(`{"count":1}`)))
		got, err := backend.Get(key("count"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"count":1}`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, backend.Set(key("over"), []byte(`{"v":1}`)))
		require.NoError(t, backend.Set(key("over"), []byte(`{"v":2}`)))
		got, err := backend.Get(key("over"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, backend.Set(key("gone"), []byte(`{}`)))
		require.NoError(t, backend.Remove(key("gone")))
		_, err := backend.Get(key("gone"))
		assert.True(t, storage.IsNotFound(err), "expected ErrKeyNotFound after remove, got %v", err)
		require.NoError(t, backend.Remove(key("never-set")))
	})

	t.Run("keys", func(t *testing.T) {
		if _, ok := backend.(storage.Lister); !ok {
			t.Skip("backend does not list keys")
		}
		require.NoError(t, backend.Set(key("list/a"), []byte(`1`)))
		require.NoError(t, backend.Set(key("list/b"), []byte(`2`)))
		keys, err := storage.Keys(backend, key("list/"))
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{key("list/a"), key("list/b")}, keys)
	})
}
