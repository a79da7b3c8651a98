package layering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProjectKeepsOnlyRequestedPaths(t *testing.T) {
	state := map[string]any{
		"count": 3,
		"userInfo": map[string]any{
			"name":  "ada",
			"email": "ada@example.com",
		},
		"ui": map[string]any{"open": true},
	}

	got := Project(state, []string{"count", "userInfo.name", "missing.path"})
	want := map[string]any{
		"count":    3,
		"userInfo": map[string]any{"name": "ada"},
		"missing":  map[string]any{"path": Absent},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectMarksMissingPaths(t *testing.T) {
	got := Project(map[string]any{}, []string{"a.b"})
	if diff := cmp.Diff(map[string]any{"a": map[string]any{"b": Absent}}, got); diff != "" {
		t.Fatalf("missing path projection (-want +got):\n%s", diff)
	}
	if !IsAbsent(got["a"].(map[string]any)["b"]) {
		t.Fatalf("expected Absent leaf")
	}

	merged := Merge(map[string]any{"a": map[string]any{"b": 1, "c": 2}}, got)
	if diff := cmp.Diff(map[string]any{"a": map[string]any{"c": 2}}, merged); diff != "" {
		t.Fatalf("Absent should remove the key (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a": map[string]any{}}, Merge(nil, got)); diff != "" {
		t.Fatalf("Absent should not survive a merge (-want +got):\n%s", diff)
	}

	dst := map[string]any{"a": map[string]any{"b": 1}}
	MergeInto(dst, got)
	if Has(dst, "a.b") {
		t.Fatalf("expected MergeInto to remove the key, got %v", dst)
	}
}

func TestProjectSkipsPathsThroughScalars(t *testing.T) {
	state := map[string]any{"count": 3}
	got := Project(state, []string{"count", "count.x"})
	if diff := cmp.Diff(map[string]any{"count": 3}, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectCopiesValues(t *testing.T) {
	state := map[string]any{"userInfo": map[string]any{"name": "ada"}}
	got := Project(state, []string{"userInfo"})
	got["userInfo"].(map[string]any)["name"] = "grace"
	if state["userInfo"].(map[string]any)["name"] != "ada" {
		t.Fatalf("projection aliases state")
	}
}

func TestProjectBoundaries(t *testing.T) {
	state := map[string]any{"a": 1}

	if got := Project(state, []string{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty projection, got %#v", got)
	}
	got := Project(state, nil)
	got["b"] = 2
	if _, ok := state["b"]; !ok {
		t.Fatalf("expected nil paths to pass state through unchanged")
	}
}

func TestProjectAnyAcceptsUntypedLists(t *testing.T) {
	state := map[string]any{"a": 1, "b": 2}

	got, ok := ProjectAny(state, []any{"a"})
	if !ok || len(got) != 1 || got["a"] != 1 {
		t.Fatalf("unexpected projection %v ok=%v", got, ok)
	}
	if _, ok := ProjectAny(state, []any{"a", 3}); ok {
		t.Fatalf("expected mixed list to be rejected")
	}
	if _, ok := ProjectAny(state, "a"); ok {
		t.Fatalf("expected non-list to be rejected")
	}
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"empty record", map[string]any{}, true},
		{"empty list", []any{}, true},
		{"empty typed slice", []int{}, true},
		{"empty string", "", true},
		{"record", map[string]any{"a": 1}, false},
		{"zero", 0, false},
		{"false", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmpty(tc.value); got != tc.want {
				t.Fatalf("IsEmpty(%#v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		value any
		want  Kind
	}{
		{1, KindScalar},
		{"s", KindScalar},
		{map[string]any{}, KindRecord},
		{[]any{}, KindSequence},
		{map[string]int{}, KindSequence},
		{[3]int{}, KindSequence},
		{func() {}, KindOpaque},
		{&struct{}{}, KindOpaque},
	}
	for _, tc := range cases {
		if got := KindOf(tc.value); got != tc.want {
			t.Fatalf("KindOf(%T) = %s, want %s", tc.value, got, tc.want)
		}
	}
}
