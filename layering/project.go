package layering

// Absent marks a projected path that did not resolve in the source state.
// Merging Absent over a record removes the key, so a projection taken from a
// state that lacked a path clears that path wherever it is merged.
var Absent any = absent{}

type absent struct{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Project reduces state to the given dotted paths. The result is a fresh
// record holding a copy of the value found at every path, with intermediate
// records synthesized as needed; sibling keys are never copied.
//
// A path whose value is missing from state projects to Absent. A path that
// runs through a value that is not a record is skipped.
//
// A nil paths slice passes state through unchanged. An empty, non-nil slice
// yields an empty record.
func Project(state map[string]any, paths []string) map[string]any {
	if paths == nil {
		return state
	}
	c := newCloner()
	out := map[string]any{}
	for _, path := range paths {
		if path == "" {
			continue
		}
		value, found, reachable := lookup(state, path)
		switch {
		case found:
			Set(out, path, c.clone(value))
		case reachable:
			Set(out, path, Absent)
		}
	}
	return out
}

// lookup is Get that also tells a missing key apart from a path blocked by a
// value that is not a record.
func lookup(state map[string]any, path string) (value any, found, reachable bool) {
	var current any = state
	for _, segment := range SplitPath(path) {
		record, ok := current.(map[string]any)
		if !ok {
			return nil, false, false
		}
		next, ok := record[segment]
		if !ok {
			return nil, false, true
		}
		current = next
	}
	return current, true, true
}

// ProjectAny is Project for untyped path lists such as reset payloads that
// crossed a mutation channel. It accepts []string or []any holding only
// strings; any other paths value passes state through and reports false.
func ProjectAny(state map[string]any, paths any) (map[string]any, bool) {
	list, ok := PathList(paths)
	if !ok {
		return state, false
	}
	return Project(state, list), true
}

// PathList converts an untyped path list into []string.
func PathList(paths any) ([]string, bool) {
	switch typed := paths.(type) {
	case []string:
		if typed == nil {
			return []string{}, true
		}
		return typed, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			path, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, path)
		}
		return out, true
	default:
		return nil, false
	}
}
