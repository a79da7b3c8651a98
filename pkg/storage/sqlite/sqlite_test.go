package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-persist/pkg/storage/sqlite"
	"github.com/goliatone/go-persist/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteConformance(t *testing.T) {
	backend, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer backend.Close()

	storagetest.Run(t, backend, "")
}

func TestSQLitePersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "persist.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("app", []byte(`{"count":2}`)))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get("app")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, string(got))
}

func TestSQLiteRejectsUnsafeTableNames(t *testing.T) {
	_, err := sqlite.New(nil, "x")
	require.Error(t, err)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = sqlite.New(db, "state; DROP TABLE x")
	require.Error(t, err)

	custom, err := sqlite.New(db, "custom_state")
	require.NoError(t, err)
	require.NoError(t, custom.Set("k", []byte(`{}`)))
}
