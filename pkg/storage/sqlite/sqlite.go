// Package sqlite implements storage.Storage on a single SQLite table of
// key/payload rows using the pure Go modernc driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goliatone/go-persist/pkg/storage"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultTable is the table entries are stored in.
const DefaultTable = "persisted_state"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Storage persists entries as rows of (key, payload).
type Storage struct {
	db    *sql.DB
	table string
	owned bool
}

// Open opens (or creates) the database at path and ensures the table exists.
// An empty path opens "persist.db"; ":memory:" keeps everything in memory.
func Open(path string) (*Storage, error) {
	if path == "" {
		path = "persist.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	s, err := New(db, DefaultTable)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New uses an existing database handle and table.
func New(db *sql.DB, table string) (*Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is required")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}
	if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`, table)); err != nil {
		return nil, fmt.Errorf("sqlite: create table %s: %w", table, err)
	}
	return &Storage{db: db, table: table}, nil
}

// Close closes the database when it was opened by Open.
func (s *Storage) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) Get(key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(fmt.Sprintf(`SELECT payload FROM %s WHERE key = ?`, s.table), key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: select %q: %w", key, err)
	}
	return payload, nil
}

func (s *Storage) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.Exec(fmt.Sprintf(`INSERT INTO %s (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`, s.table), key, value)
	if err != nil {
		return fmt.Errorf("sqlite: upsert %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(key string) error {
	if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table), key); err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT key FROM %s WHERE substr(key, 1, ?) = ? ORDER BY key`, s.table), len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite: scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
