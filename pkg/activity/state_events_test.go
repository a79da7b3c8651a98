package activity

import (
	"context"
	"testing"
	"time"
)

func TestEventNormalizeTrimsAndDetaches(t *testing.T) {
	meta := map[string]any{"k": "v"}
	paths := []string{"userInfo.name"}
	event := Event{
		Verb:       " state.persisted ",
		Actor:      Actor{ActorID: " actor ", UserID: " user ", TenantID: " tenant "},
		Channel:    " persist ",
		Group:      " group-1 ",
		StorageKey: " user ",
		Paths:      paths,
		Metadata:   meta,
	}

	got := event.Normalize()

	if got.Verb != VerbStatePersisted || got.Channel != "persist" || got.Group != "group-1" || got.StorageKey != "user" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.Actor != (Actor{ActorID: "actor", UserID: "user", TenantID: "tenant"}) {
		t.Fatalf("unexpected actor: %+v", got.Actor)
	}
	got.Metadata["k"] = "changed"
	got.Paths[0] = "changed"
	if meta["k"] != "v" || paths[0] != "userInfo.name" {
		t.Fatalf("expected inputs untouched, got %v %v", meta, paths)
	}
	if !got.OccurredAt.IsZero() {
		t.Fatalf("expected Normalize to leave the timestamp to the emitter")
	}
}

func TestEventObjectID(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  string
	}{
		{name: "storage key", event: Event{StorageKey: "k", Group: "g"}, want: "k"},
		{name: "group", event: Event{Group: "g", SnapshotID: "s"}, want: "g"},
		{name: "snapshot", event: Event{SnapshotID: "s"}, want: "s"},
		{name: "object type", event: Event{StorageKey: "  "}, want: ObjectTypeState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.ObjectID(); got != tc.want {
				t.Fatalf("expected object id %q, got %q", tc.want, got)
			}
		})
	}
	if (Event{}).ObjectType() != ObjectTypeState {
		t.Fatalf("unexpected object type")
	}
}

func TestEventFields(t *testing.T) {
	event := Event{
		Group:        "group-1",
		StorageKey:   "user",
		MutationType: "setName",
		SnapshotID:   "snap-1",
		Paths:        []string{"userInfo.name"},
		Metadata:     map[string]any{"custom": "value", "group": "shadowed"},
	}
	fields := event.Fields()
	if fields["group"] != "group-1" || fields["storage_key"] != "user" || fields["custom"] != "value" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if fields["mutation_type"] != "setName" || fields["snapshot_id"] != "snap-1" {
		t.Fatalf("unexpected mutation fields %v", fields)
	}
	fields["paths"].([]string)[0] = "changed"
	if event.Paths[0] != "userInfo.name" {
		t.Fatalf("expected paths detached")
	}
	if (Event{}).Fields() != nil {
		t.Fatalf("expected nil fields for an empty event")
	}
}

func TestEmitterStampsDefaults(t *testing.T) {
	capture := &CaptureHook{}
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	emitter := NewEmitter(Hooks{capture, nil}, Config{
		Actor: Actor{ActorID: "cli"},
		Now:   func() time.Time { return when },
	})
	if !emitter.Enabled() || len(emitter.Hooks()) != 1 {
		t.Fatalf("expected one live hook")
	}

	if err := emitter.Emit(context.Background(), Event{Verb: VerbStateRestored, StorageKey: "app"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events[0]
	if got.Channel != DefaultChannel || got.Actor.ActorID != "cli" || !got.OccurredAt.Equal(when) {
		t.Fatalf("expected defaults stamped, got %+v", got)
	}

	explicit := Event{Verb: VerbStateReset, Channel: "custom", Actor: Actor{UserID: "u"}, OccurredAt: when.Add(time.Hour)}
	if err := emitter.Emit(context.Background(), explicit); err != nil {
		t.Fatalf("emit: %v", err)
	}
	got = capture.Events[1]
	if got.Channel != "custom" || got.Actor != (Actor{UserID: "u"}) || !got.OccurredAt.Equal(explicit.OccurredAt) {
		t.Fatalf("expected explicit fields kept, got %+v", got)
	}
}

func TestEmitterVerbFilter(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Verbs: []string{VerbStateReset}})

	for _, verb := range []string{VerbStatePersisted, VerbStateReset, VerbStateRemoved} {
		if err := emitter.Emit(context.Background(), Event{Verb: verb, StorageKey: "app"}); err != nil {
			t.Fatalf("emit %s: %v", verb, err)
		}
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != VerbStateReset {
		t.Fatalf("expected only reset events, got %v", verbs)
	}
	if !emitter.Wants(VerbStateReset) || emitter.Wants(VerbStatePersisted) {
		t.Fatalf("unexpected Wants result")
	}
}

func TestEmitterWithoutHooks(t *testing.T) {
	var nilEmitter *Emitter
	if nilEmitter.Enabled() || nilEmitter.Wants(VerbStateReset) {
		t.Fatalf("expected nil emitter to be disabled")
	}
	if err := nilEmitter.Emit(context.Background(), Event{Verb: VerbStateReset}); err != nil {
		t.Fatalf("expected nil emitter to be a no-op, got %v", err)
	}
	if NewEmitter(Hooks{nil}, Config{}).Enabled() {
		t.Fatalf("expected emitter without live hooks to be disabled")
	}
}
