// Package usersink forwards state activity events to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-persist/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook records state events as go-users activity records.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps event onto an ActivityRecord. The group, storage key, mutation
// type, paths and snapshot id travel in the record data. Identities that are
// not UUIDs are recorded as uuid.Nil and kept verbatim in the data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Normalize()

	data := event.Fields()
	record := usertypes.ActivityRecord{
		Verb:       event.Verb,
		ObjectType: event.ObjectType(),
		ObjectID:   event.ObjectID(),
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}
	record.ActorID, data = identity(event.Actor.ActorID, "actor_id", data)
	record.UserID, data = identity(event.Actor.UserID, "user_id", data)
	record.TenantID, data = identity(event.Actor.TenantID, "tenant_id", data)
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	record.Data = data
	return h.Sink.Log(ctx, record)
}

func identity(value, field string, data map[string]any) (uuid.UUID, map[string]any) {
	if value == "" {
		return uuid.Nil, data
	}
	id, err := uuid.Parse(value)
	if err == nil {
		return id, data
	}
	if data == nil {
		data = map[string]any{}
	}
	data[field] = value
	return uuid.Nil, data
}
