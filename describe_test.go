package persist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescribe(t *testing.T) {
	state := map[string]any{
		"count": 1,
		"userInfo": map[string]any{
			"name": "ada",
			"tags": []any{"a", "b"},
		},
		"ui":    map[string]any{},
		"owner": nil,
	}

	want := []FieldDescriptor{
		{Path: "count", Type: "int", Kind: "scalar"},
		{Path: "owner", Type: "nil", Kind: "scalar"},
		{Path: "ui", Type: "map[string]interface {}", Kind: "record"},
		{Path: "userInfo.name", Type: "string", Kind: "scalar"},
		{Path: "userInfo.tags", Type: "[]string", Kind: "sequence"},
	}
	if diff := cmp.Diff(want, Describe(state)); diff != "" {
		t.Fatalf("descriptors mismatch (-want +got):\n%s", diff)
	}

	if got := Describe(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty descriptors for nil state, got %v", got)
	}
}

func TestDescribePaths(t *testing.T) {
	state := map[string]any{"userInfo": map[string]any{"name": "ada"}}
	got := DescribePaths(state, []string{"userInfo.name", "userInfo.email", "count"})
	want := map[string]bool{"userInfo.name": true, "userInfo.email": false, "count": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("path report mismatch (-want +got):\n%s", diff)
	}
}
