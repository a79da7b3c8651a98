package layering

import "reflect"

// Merge combines records from left to right into a fresh record. Later
// records win on conflicting values. Nested records merge recursively; any
// other value, sequences included, replaces whatever was there before. An
// Absent value removes the key. Nil and empty records contribute nothing.
//
// The result never shares a mutable container with its inputs.
func Merge(records ...map[string]any) map[string]any {
	m := newMerger()
	out := map[string]any{}
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		m.into(out, record)
	}
	return out
}

// MergeInto merges src into dst in place and returns dst (allocated when nil).
// Nested records already held by dst are updated in place, so dst must be
// owned by the caller; values taken from src are cloned.
func MergeInto(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	if len(src) == 0 {
		return dst
	}
	return newMerger().into(dst, src)
}

type mergePair struct {
	dst uintptr
	src uintptr
}

type merger struct {
	active map[mergePair]struct{}
}

func newMerger() *merger {
	return &merger{active: map[mergePair]struct{}{}}
}

func (m *merger) into(dst, src map[string]any) map[string]any {
	pair := mergePair{
		dst: reflect.ValueOf(dst).Pointer(),
		src: reflect.ValueOf(src).Pointer(),
	}
	if _, ok := m.active[pair]; ok {
		return dst
	}
	m.active[pair] = struct{}{}
	defer delete(m.active, pair)

	for key, incoming := range src {
		if IsAbsent(incoming) {
			delete(dst, key)
			continue
		}
		record, ok := incoming.(map[string]any)
		if !ok {
			dst[key] = Clone(incoming)
			continue
		}
		existing, ok := dst[key].(map[string]any)
		if !ok || existing == nil {
			dst[key] = m.fresh(record)
			continue
		}
		m.into(existing, record)
	}
	return dst
}

// fresh deep copies a record that lands on a slot without a record. Each
// value gets its own clone so two slots never end up sharing a container.
func (m *merger) fresh(record map[string]any) map[string]any {
	if record == nil {
		return map[string]any{}
	}
	out := CloneTree(record)
	dropAbsent(out, map[uintptr]struct{}{})
	return out
}

func dropAbsent(record map[string]any, seen map[uintptr]struct{}) {
	ptr := reflect.ValueOf(record).Pointer()
	if _, ok := seen[ptr]; ok {
		return
	}
	seen[ptr] = struct{}{}
	for key, value := range record {
		if IsAbsent(value) {
			delete(record, key)
			continue
		}
		if nested, ok := value.(map[string]any); ok && nested != nil {
			dropAbsent(nested, seen)
		}
	}
}
