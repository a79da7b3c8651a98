package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-persist/pkg/storage"
)

// ErrMalformedPayload reports a persisted entry that is not a JSON object.
var ErrMalformedPayload = errors.New("persist: persisted payload is not an object")

// JSONGetState decodes the JSON object stored under key. A missing key or a
// JSON null yields no data.
func JSONGetState(key string, backend storage.Storage) (map[string]any, error) {
	raw, err := backend.Get(key)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	switch typed := decoded.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return typed, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrMalformedPayload, decoded)
	}
}

// JSONSetState encodes state as JSON under key.
func JSONSetState(key string, state map[string]any, backend storage.Storage) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("persist: encode %q: %w", key, err)
	}
	return backend.Set(key, raw)
}

// RemoveState removes key from backend.
func RemoveState(key string, backend storage.Storage) error {
	return backend.Remove(key)
}
