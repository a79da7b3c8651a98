package persist

import (
	"errors"
	"testing"

	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/google/go-cmp/cmp"
)

func TestJSONGetState(t *testing.T) {
	cases := []struct {
		name      string
		raw       *string
		want      map[string]any
		malformed bool
	}{
		{name: "missing key"},
		{name: "empty", raw: strPtr("   ")},
		{name: "null", raw: strPtr("null")},
		{name: "object", raw: strPtr(`{"count":1,"ui":{"theme":"dark"}}`), want: map[string]any{
			"count": float64(1),
			"ui":    map[string]any{"theme": "dark"},
		}},
		{name: "array", raw: strPtr(`[1]`), malformed: true},
		{name: "string", raw: strPtr(`"x"`), malformed: true},
		{name: "syntax", raw: strPtr(`{"count":`), malformed: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			backend := storage.NewMemory()
			if tc.raw != nil {
				_ = backend.Set("k", []byte(*tc.raw))
			}
			got, err := JSONGetState("k", backend)
			if tc.malformed {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Fatalf("expected ErrMalformedPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("decoded state (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONSetStateAndRemove(t *testing.T) {
	backend := storage.NewMemory()
	if err := JSONSetState("k", map[string]any{"count": 2}, backend); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, err := backend.Get("k")
	if err != nil || string(raw) != `{"count":2}` {
		t.Fatalf("unexpected stored bytes %q %v", raw, err)
	}

	if err := JSONSetState("k", map[string]any{"fn": func() {}}, backend); err == nil {
		t.Fatalf("expected unencodable state to fail")
	}

	if err := RemoveState("k", backend); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := RemoveState("k", backend); err != nil {
		t.Fatalf("removing a missing key should succeed: %v", err)
	}
	if _, err := backend.Get("k"); !storage.IsNotFound(err) {
		t.Fatalf("expected key removed, got %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}
