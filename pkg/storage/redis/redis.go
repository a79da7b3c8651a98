// Package redis implements storage.Storage on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-persist/pkg/storage"
	goredis "github.com/redis/go-redis/v9"
)

// Config holds the connection settings for a Storage.
type Config struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Timeout bounds every individual storage call.
	Timeout time.Duration
}

// DefaultConfig returns a Config pointing at a local Redis.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Timeout:      5 * time.Second,
	}
}

// Storage stores each entry as a Redis string.
type Storage struct {
	client  goredis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	owned   bool
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	s := New(client, cfg.KeyPrefix, cfg.TTL)
	s.timeout = cfg.Timeout
	s.owned = true
	return s, nil
}

// New wraps an existing client. A zero ttl keeps entries forever.
func New(client goredis.UniversalClient, prefix string, ttl time.Duration) *Storage {
	return &Storage{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: DefaultConfig().Timeout,
	}
}

// Close closes the client when it was created by Open.
func (s *Storage) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func (s *Storage) key(key string) string {
	return s.prefix + key
}

func (s *Storage) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Storage) Get(key string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %q: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(key string, value []byte) error {
	ctx, cancel := s.context()
	defer cancel()
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(key string) error {
	ctx, cancel := s.context()
	defer cancel()
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: del %q: %w", key, err)
	}
	return nil
}

// Keys walks the keyspace with SCAN so large databases are not blocked.
func (s *Storage) Keys(prefix string) ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()
	var (
		keys   []string
		cursor uint64
	)
	pattern := s.key(prefix) + "*"
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: scan %q: %w", pattern, err)
		}
		for _, k := range batch {
			keys = append(keys, k[len(s.prefix):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
