package layering

import (
	"encoding/json"
	"errors"
	"math/big"
	"reflect"
	"regexp"
	"time"
)

// Clone returns a deep copy of v. Records, sequences, maps and sets are copied
// element by element; special wrappers (regexps, big numbers, time pointers,
// leaf errors) are rebuilt through their copy constructors; struct values are
// copied with every exported field cloned. Scalars and opaque values (funcs,
// channels, other pointers, unexported struct fields) are kept as-is.
//
// Every container is registered before its children are visited, so shared
// and cyclic structure in v is reproduced in the clone instead of recursing
// forever or aliasing the input.
func Clone(v any) any {
	c := newCloner()
	return c.clone(v)
}

// CloneTree deep copies a state tree. A nil tree yields nil.
func CloneTree(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	c := newCloner()
	return c.record(tree)
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type cloner struct {
	seen map[visitKey]reflect.Value
}

func newCloner() *cloner {
	return &cloner{seen: map[visitKey]reflect.Value{}}
}

func (c *cloner) clone(v any) any {
	if v == nil {
		return nil
	}
	if out, ok := c.known(v); ok {
		return out
	}
	out := c.value(reflect.ValueOf(v))
	if !out.IsValid() {
		return nil
	}
	return out.Interface()
}

// known handles the concrete types that do not need reflection.
func (c *cloner) known(v any) (any, bool) {
	switch typed := v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128,
		json.Number, time.Time, time.Duration:
		return v, true
	case map[string]any:
		if typed == nil {
			return typed, true
		}
		return c.record(typed), true
	case []any:
		if typed == nil {
			return typed, true
		}
		return c.list(typed), true
	case *regexp.Regexp:
		if typed == nil {
			return typed, true
		}
		return regexp.MustCompile(typed.String()), true
	case *big.Int:
		if typed == nil {
			return typed, true
		}
		return new(big.Int).Set(typed), true
	case *big.Float:
		if typed == nil {
			return typed, true
		}
		return new(big.Float).Copy(typed), true
	case *big.Rat:
		if typed == nil {
			return typed, true
		}
		return new(big.Rat).Set(typed), true
	case *time.Time:
		if typed == nil {
			return typed, true
		}
		copied := *typed
		return &copied, true
	}
	if isLeafError(v) {
		return errors.New(v.(error).Error()), true
	}
	return nil, false
}

func (c *cloner) record(m map[string]any) map[string]any {
	key := visitKey{typ: recordType, ptr: reflect.ValueOf(m).Pointer()}
	if seen, ok := c.seen[key]; ok {
		return seen.Interface().(map[string]any)
	}
	out := make(map[string]any, len(m))
	c.seen[key] = reflect.ValueOf(out)
	for k, v := range m {
		out[k] = c.clone(v)
	}
	return out
}

func (c *cloner) list(s []any) []any {
	key := visitKey{typ: listType, ptr: reflect.ValueOf(s).Pointer(), len: len(s)}
	if len(s) > 0 {
		if seen, ok := c.seen[key]; ok {
			return seen.Interface().([]any)
		}
	}
	out := make([]any, len(s))
	if len(s) > 0 {
		c.seen[key] = reflect.ValueOf(out)
	}
	for i, v := range s {
		out[i] = c.clone(v)
	}
	return out
}

func (c *cloner) value(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		cloned := c.clone(v.Elem().Interface())
		if cloned == nil {
			return reflect.Zero(v.Type())
		}
		return reflect.ValueOf(cloned)
	case reflect.Pointer:
		if v.IsNil() || !v.CanInterface() {
			return v
		}
		if out, ok := c.known(v.Interface()); ok {
			return reflect.ValueOf(out)
		}
		return v
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if v.CanInterface() {
			if out, ok := c.known(v.Interface()); ok {
				return reflect.ValueOf(out)
			}
		}
		key := visitKey{typ: v.Type(), ptr: v.Pointer()}
		if seen, ok := c.seen[key]; ok {
			return seen
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		c.seen[key] = out
		keyType, elemType := v.Type().Key(), v.Type().Elem()
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(fit(c.value(iter.Key()), keyType), fit(c.value(iter.Value()), elemType))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if v.CanInterface() {
			if out, ok := c.known(v.Interface()); ok {
				return reflect.ValueOf(out)
			}
		}
		key := visitKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}
		if v.Len() > 0 {
			if seen, ok := c.seen[key]; ok {
				return seen
			}
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		if v.Len() > 0 {
			c.seen[key] = out
		}
		elemType := v.Type().Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(fit(c.value(v.Index(i)), elemType))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		elemType := v.Type().Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(fit(c.value(v.Index(i)), elemType))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(fit(c.value(v.Field(i)), field.Type()))
		}
		return out
	default:
		return v
	}
}

// fit makes a cloned value assignable to the container slot of type t.
func fit(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type().AssignableTo(t) {
		return v
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}
	return reflect.Zero(t)
}

var (
	recordType = reflect.TypeOf(map[string]any(nil))
	listType   = reflect.TypeOf([]any(nil))
)
