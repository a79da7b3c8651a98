package layering

import (
	"encoding/json"
	"errors"
	"math/big"
	"reflect"
	"regexp"
	"time"
)

// Kind classifies a value by how it participates in merges and clones.
type Kind int

const (
	// KindScalar covers immutable values and special wrappers (times, regexps,
	// big numbers, leaf errors). Scalars overwrite on merge.
	KindScalar Kind = iota
	// KindRecord is the JSON object shape, map[string]any. Records merge
	// recursively.
	KindRecord
	// KindSequence covers slices, arrays and non-record maps or sets. They are
	// cloned element by element and replaced wholesale on merge.
	KindSequence
	// KindOpaque covers funcs, channels, structs and pointers to anything not
	// listed above. Opaque values are shared by reference.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of v. Common concrete types are decided by a type
// switch; anything else falls back to its reflect kind.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128,
		json.Number, time.Time, time.Duration:
		return KindScalar
	case map[string]any:
		return KindRecord
	case []any, []string, []map[string]any:
		return KindSequence
	case *regexp.Regexp, *big.Int, *big.Float, *big.Rat, *time.Time:
		return KindScalar
	}
	if isLeafError(v) {
		return KindScalar
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return KindScalar
	case reflect.Map, reflect.Slice, reflect.Array:
		return KindSequence
	default:
		return KindOpaque
	}
}

// IsRecord reports whether v is a record (map[string]any).
func IsRecord(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// IsEmpty reports whether v carries no data: nil, an empty string, or an
// empty map, slice or array.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch typed := v.(type) {
	case map[string]any:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case string:
		return typed == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

var leafErrorType = reflect.TypeOf(errors.New(""))

func isLeafError(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v) == leafErrorType
}
