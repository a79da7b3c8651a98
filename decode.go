package persist

import (
	"fmt"

	"github.com/goliatone/go-persist/internal/hydrate"
	"github.com/goliatone/go-persist/layering"
	"github.com/goliatone/go-persist/pkg/storage"
)

// Decode converts the record at path inside state into T. An empty path
// decodes the whole state. When *T has a Validate() error method it runs
// after decoding.
func Decode[T any](state map[string]any, path string) (T, error) {
	return decodeAt[T](hydrate.Source{Path: path}, state, hydrate.Options{})
}

// DecodeStrict is Decode rejecting fields T does not declare.
func DecodeStrict[T any](state map[string]any, path string) (T, error) {
	return decodeAt[T](hydrate.Source{Path: path}, state, hydrate.Options{Strict: true})
}

// DecodeStored reads key from backend with the default JSON codec and
// decodes the record at path into T.
func DecodeStored[T any](backend storage.Storage, key, path string) (T, error) {
	var zero T
	state, err := JSONGetState(key, backend)
	if err != nil {
		return zero, err
	}
	if state == nil {
		return zero, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
	}
	return decodeAt[T](hydrate.Source{Key: key, Path: path}, state, hydrate.Options{})
}

func decodeAt[T any](src hydrate.Source, state map[string]any, opts hydrate.Options) (T, error) {
	var zero T
	value, ok := layering.Get(state, src.Path)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrPathNotFound, src.Path)
	}
	record, ok := value.(map[string]any)
	if !ok {
		return zero, fmt.Errorf("persist: value at %q is %s, not a record", src.Path, layering.KindOf(value))
	}
	return hydrate.Record[T](src, record, opts)
}
