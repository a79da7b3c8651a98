package persist

import (
	"errors"
	"testing"

	"github.com/goliatone/go-persist/pkg/storage"
)

func TestResolveWithTraceReturnsLayerProvenance(t *testing.T) {
	local := storage.NewMemory()
	session := storage.NewMemory()
	_ = local.Set(DefaultStorageKey, []byte(`{"ui":{"theme":"dark"}}`))
	_ = session.Set("user", []byte(`{"userInfo":{"name":"grace"},"ui":{"theme":"blue"}}`))

	host := newAppStore(nil)
	plugin, err := New(host, Config{
		Storage: local,
		Paths: []PathEntry{
			Override(GroupOverride{Name: "user", Paths: []string{"userInfo.name"}, Storage: session, StorageKey: "user"}),
			Path("ui.theme"),
		},
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	value, trace, err := plugin.ResolveWithTrace("ui.theme")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if value != "dark" {
		t.Fatalf("expected dark, got %v", value)
	}
	if len(trace.Layers) != 3 {
		t.Fatalf("expected two group layers and the initial layer, got %d", len(trace.Layers))
	}
	if trace.Layers[0].Group != DefaultGroupName || trace.Layers[1].Group != "user" || trace.Layers[2].Group != InitialLayerName {
		t.Fatalf("expected strongest layer first, got %+v", trace.Layers)
	}
	source, ok := trace.Source()
	if !ok || source.Group != DefaultGroupName || source.Value != "dark" {
		t.Fatalf("unexpected source %+v", source)
	}
	if !trace.Layers[1].Found || trace.Layers[1].Value != "blue" {
		t.Fatalf("expected weaker layer recorded, got %+v", trace.Layers[1])
	}
	if trace.Layers[2].Value != "light" {
		t.Fatalf("expected initial value, got %+v", trace.Layers[2])
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("encode trace: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if decoded.Path != "ui.theme" || len(decoded.Layers) != 3 || decoded.Layers[0].SnapshotID == "" {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
}

func TestResolveWithTraceMissingPath(t *testing.T) {
	host := newAppStore(nil)
	plugin, err := New(host, Config{Paths: Paths("count")})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	_, trace, err := plugin.ResolveWithTrace("nope.nothing")
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if _, ok := trace.Source(); ok {
		t.Fatalf("expected no source for a missing path")
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected malformed trace payload to fail")
	}
}
