package storage

import (
	"errors"
	"strings"
)

// ErrKeyNotFound is returned by Get when no value is stored under a key.
var ErrKeyNotFound = errors.New("storage: key not found")

// Storage is a synchronous key/value backend. Every call completes before it
// returns; implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(prefix string) ([]string, error)
}

// Keys lists the keys in backend starting with prefix when it implements
// Lister.
func Keys(backend Storage, prefix string) ([]string, error) {
	lister, ok := backend.(Lister)
	if !ok {
		return nil, errors.New("storage: backend cannot list keys")
	}
	return lister.Keys(prefix)
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Prefixed namespaces every key of backend under prefix. Keys are joined as
// "<prefix>/<key>", mirroring the identifier layout used for scoped
// snapshots (for example "user/u42/__VUEX_PERSIST_PLUGIN__").
type Prefixed struct {
	Backend Storage
	Prefix  string
}

// NewPrefixed wraps backend so that all keys live under prefix.
func NewPrefixed(backend Storage, prefix string) *Prefixed {
	return &Prefixed{Backend: backend, Prefix: strings.Trim(prefix, "/")}
}

func (p *Prefixed) key(key string) string {
	if p.Prefix == "" {
		return key
	}
	return p.Prefix + "/" + key
}

func (p *Prefixed) Get(key string) ([]byte, error) {
	return p.Backend.Get(p.key(key))
}

func (p *Prefixed) Set(key string, value []byte) error {
	return p.Backend.Set(p.key(key), value)
}

func (p *Prefixed) Remove(key string) error {
	return p.Backend.Remove(p.key(key))
}

// Keys lists keys below the namespace with the namespace stripped.
func (p *Prefixed) Keys(prefix string) ([]string, error) {
	keys, err := Keys(p.Backend, p.key(prefix))
	if err != nil {
		return nil, err
	}
	if p.Prefix == "" {
		return keys, nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, p.Prefix+"/"))
	}
	return out, nil
}
