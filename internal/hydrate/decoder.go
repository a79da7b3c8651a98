// Package hydrate turns persisted state records back into typed Go values.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Source names where a record was read from.
type Source struct {
	// Key is the storage key the record was persisted under. Empty for
	// records taken from live state.
	Key string
	// Path is the dotted path of the record inside the stored entry.
	Path string
}

func (s Source) String() string {
	switch {
	case s.Key == "":
		return s.Path
	case s.Path == "":
		return s.Key
	default:
		return s.Key + ":" + s.Path
	}
}

// Options tune how a record is decoded.
type Options struct {
	// Strict rejects fields the target type does not declare.
	Strict bool
	// UseNumber keeps numbers in untyped fields as json.Number.
	UseNumber bool
}

// Check validates or completes a decoded value.
type Check[T any] func(Source, *T) error

// Validator is run after decoding when the target implements it.
type Validator interface {
	Validate() error
}

// Record decodes record into T through its JSON form, which is the form the
// record had in storage. Values with no JSON form (funcs, channels, complex
// numbers) are reported with their path instead of a generic marshal error.
func Record[T any](src Source, record map[string]any, opts Options, checks ...Check[T]) (T, error) {
	var zero T
	if record == nil {
		return zero, fmt.Errorf("hydrate: no record at %q", src)
	}
	if path, kind, ok := firstUnencodable(reflect.ValueOf(record), src.Path); !ok {
		return zero, fmt.Errorf("hydrate: %q holds a %s, which has no stored form", path, kind)
	}
	buffer, err := json.Marshal(record)
	if err != nil {
		return zero, fmt.Errorf("hydrate: encode %q: %w", src, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if opts.Strict {
		decoder.DisallowUnknownFields()
	}
	if opts.UseNumber {
		decoder.UseNumber()
	}
	var out T
	if err := decoder.Decode(&out); err != nil {
		return zero, fmt.Errorf("hydrate: decode %q: %w", src, err)
	}

	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := check(src, &out); err != nil {
			return zero, fmt.Errorf("hydrate: check %q: %w", src, err)
		}
	}
	if validator, ok := any(&out).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return zero, fmt.Errorf("hydrate: validate %q: %w", src, err)
		}
	}
	return out, nil
}

// firstUnencodable walks records and sequences in key order and reports the
// first value encoding/json cannot represent.
func firstUnencodable(v reflect.Value, path string) (string, reflect.Kind, bool) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return "", 0, true
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "", 0, true
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return path, v.Kind(), false
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return "", 0, true
		}
		keys := make([]string, 0, v.Len())
		for _, key := range v.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		for _, key := range keys {
			child := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
			if p, kind, ok := firstUnencodable(child, join(path, key)); !ok {
				return p, kind, false
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if p, kind, ok := firstUnencodable(v.Index(i), join(path, fmt.Sprint(i))); !ok {
				return p, kind, false
			}
		}
	}
	return "", 0, true
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
