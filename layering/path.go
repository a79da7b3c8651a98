package layering

import "strings"

// PathSeparator splits dotted paths into segments. Literal dots inside keys
// cannot be escaped.
const PathSeparator = "."

// SplitPath returns the segments of a dotted path. An empty path has no
// segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath appends segment to prefix using the path separator.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + PathSeparator + segment
}

// Get walks target along path and returns the value found there. It reports
// false as soon as a segment is missing or the current value is not a record.
// An empty path resolves to target itself.
func Get(target any, path string) (any, bool) {
	current := target
	for _, segment := range SplitPath(path) {
		record, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := record[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Has reports whether path resolves to a value inside target.
func Has(target any, path string) bool {
	_, ok := Get(target, path)
	return ok
}

// Set assigns value at path inside target, creating an empty record for every
// missing or non-record intermediate segment. Target is mutated in place and
// returned; a nil target is allocated. Callers must own target exclusively.
func Set(target map[string]any, path string, value any) map[string]any {
	if target == nil {
		target = map[string]any{}
	}
	segments := SplitPath(path)
	if len(segments) == 0 {
		return target
	}

	current := target
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok || next == nil {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return target
}

// Delete removes the value at path from target. Missing intermediates are
// ignored. It reports whether a value was removed.
func Delete(target map[string]any, path string) bool {
	segments := SplitPath(path)
	if len(segments) == 0 || target == nil {
		return false
	}
	parent, ok := Get(target, strings.Join(segments[:len(segments)-1], PathSeparator))
	if !ok {
		return false
	}
	record, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	last := segments[len(segments)-1]
	if _, exists := record[last]; !exists {
		return false
	}
	delete(record, last)
	return true
}
