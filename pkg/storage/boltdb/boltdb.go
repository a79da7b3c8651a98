// Package boltdb implements storage.Storage on a bbolt file.
package boltdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-persist/pkg/storage"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// DefaultBucket holds persisted entries when no bucket is configured.
const DefaultBucket = "persist"

// Option configures a Storage.
type Option func(*Storage)

// WithBucket stores entries in the named bucket.
func WithBucket(name string) Option {
	return func(s *Storage) {
		if name != "" {
			s.bucket = []byte(name)
		}
	}
}

// WithLogger sets the logger on the store.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds how long Open waits for the file lock.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Storage) {
		s.timeout = timeout
	}
}

// Storage is a storage.Storage backed by boltdb.
type Storage struct {
	path    string
	bucket  []byte
	timeout time.Duration
	db      *bolt.DB
	logger  *zap.Logger
}

// Open creates the bolt file when it does not exist and opens it otherwise.
func Open(path string, opts ...Option) (*Storage, error) {
	s := &Storage{
		path:    path,
		bucket:  []byte(DefaultBucket),
		timeout: time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("boltdb: create directory for %s: %w", s.path, err)
	}
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("boltdb: open %s: %w", s.path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltdb: create bucket %q: %w", s.bucket, err)
	}
	s.db = db
	s.logger.Info("Resources opened", zap.String("path", s.path), zap.ByteString("bucket", s.bucket))
	return s, nil
}

// Close releases the bolt file.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(s.bucket).Get([]byte(key))
		if value == nil {
			return storage.ErrKeyNotFound
		}
		// value is only valid for the life of the transaction.
		out = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	if errors.Is(err, bolt.ErrTxNotWritable) {
		s.logger.Error("Write rejected", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *Storage) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Storage) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}
