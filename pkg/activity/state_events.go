package activity

import (
	"strings"
	"time"
)

// Verbs emitted for persisted state.
const (
	VerbStateRestored  = "state.restored"
	VerbStatePersisted = "state.persisted"
	VerbStateRemoved   = "state.removed"
	VerbStateReset     = "state.reset"
)

// ObjectTypeState is the object type of every state event.
const ObjectTypeState = "state"

// Actor identifies who caused the events a plugin emits.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// Event describes one restore, save, removal or reset. Group and StorageKey
// name the persistence group involved; Paths lists the paths a scoped reset
// touched or a group persists. Metadata carries caller supplied extras.
type Event struct {
	Verb         string
	Actor        Actor
	Channel      string
	Group        string
	StorageKey   string
	MutationType string
	Paths        []string
	SnapshotID   string
	Metadata     map[string]any
	OccurredAt   time.Time
}

// ObjectType is always ObjectTypeState.
func (e Event) ObjectType() string {
	return ObjectTypeState
}

// ObjectID names the stored entry: the storage key, else the group, else
// the snapshot, else ObjectTypeState.
func (e Event) ObjectID() string {
	for _, candidate := range []string{e.StorageKey, e.Group, e.SnapshotID} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return candidate
		}
	}
	return ObjectTypeState
}

// Fields flattens the persistence fields and Metadata into one map for sinks
// that only take free form data. Persistence fields win over metadata keys.
func (e Event) Fields() map[string]any {
	fields := make(map[string]any, len(e.Metadata)+5)
	for key, value := range e.Metadata {
		fields[key] = value
	}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("group", e.Group)
	set("storage_key", e.StorageKey)
	set("mutation_type", e.MutationType)
	set("snapshot_id", e.SnapshotID)
	if len(e.Paths) > 0 {
		fields["paths"] = append([]string(nil), e.Paths...)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Normalize trims identifiers and detaches Paths and Metadata from the
// caller. OccurredAt is left alone; the Emitter stamps it.
func (e Event) Normalize() Event {
	e.Verb = strings.TrimSpace(e.Verb)
	e.Actor = Actor{
		ActorID:  strings.TrimSpace(e.Actor.ActorID),
		UserID:   strings.TrimSpace(e.Actor.UserID),
		TenantID: strings.TrimSpace(e.Actor.TenantID),
	}
	e.Channel = strings.TrimSpace(e.Channel)
	e.Group = strings.TrimSpace(e.Group)
	e.StorageKey = strings.TrimSpace(e.StorageKey)
	e.MutationType = strings.TrimSpace(e.MutationType)
	e.SnapshotID = strings.TrimSpace(e.SnapshotID)
	return e.clone()
}

func (e Event) clone() Event {
	if e.Paths != nil {
		e.Paths = append([]string(nil), e.Paths...)
	}
	if len(e.Metadata) == 0 {
		e.Metadata = nil
		return e
	}
	metadata := make(map[string]any, len(e.Metadata))
	for key, value := range e.Metadata {
		metadata[key] = value
	}
	e.Metadata = metadata
	return e
}
