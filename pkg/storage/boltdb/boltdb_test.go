package boltdb_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-persist/pkg/storage/boltdb"
	"github.com/goliatone/go-persist/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltConformance(t *testing.T) {
	backend, err := boltdb.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer backend.Close()

	storagetest.Run(t, backend, "")
}

func TestBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := boltdb.Open(path, boltdb.WithBucket("app"))
	require.NoError(t, err)
	require.NoError(t, first.Set("__VUEX_PERSIST_PLUGIN__", []byte(`{"count":1}`)))
	require.NoError(t, first.Close())

	second, err := boltdb.Open(path, boltdb.WithBucket("app"))
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get("__VUEX_PERSIST_PLUGIN__")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(got))
}
