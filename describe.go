package persist

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-persist/layering"
)

// FieldDescriptor describes a leaf path of a state tree and its Go type.
type FieldDescriptor struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type" yaml:"type"`
	Kind string `json:"kind" yaml:"kind"`
}

// Describe flattens state into sorted leaf descriptors. Empty records and
// sequences are reported as leaves.
func Describe(state map[string]any) []FieldDescriptor {
	descriptors := deriveFieldDescriptors(state, "")
	if descriptors == nil {
		return []FieldDescriptor{}
	}
	return descriptors
}

// DescribePaths reports which of paths resolve inside state.
func DescribePaths(state map[string]any, paths []string) map[string]bool {
	out := make(map[string]bool, len(paths))
	for _, path := range paths {
		out[path] = layering.Has(state, path)
	}
	return out
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	record, ok := value.(map[string]any)
	if !ok {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{describeLeaf(prefix, value)}
	}
	if len(record) == 0 {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{describeLeaf(prefix, record)}
	}
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var fields []FieldDescriptor
	for _, key := range keys {
		fields = append(fields, deriveFieldDescriptors(record[key], layering.JoinPath(prefix, key))...)
	}
	return fields
}

func describeLeaf(path string, value any) FieldDescriptor {
	typ := typeName(value)
	if list, ok := value.([]any); ok {
		elementType := "any"
		if len(list) > 0 {
			elementType = typeName(list[0])
		}
		typ = "[]" + elementType
	}
	return FieldDescriptor{
		Path: path,
		Type: typ,
		Kind: layering.KindOf(value).String(),
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}
