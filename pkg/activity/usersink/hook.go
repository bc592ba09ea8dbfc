// Package usersink forwards setting activity to a go-users ActivitySink.
package usersink

import (
	"context"

	"github.com/goliatone/go-powermenu/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

var _ activity.Hook = Hook{}

// Hook records setting events as go-users activity. Actor and user ids that
// are not UUIDs are kept in the record data as actor_ref and user_ref.
type Hook struct {
	Sink usertypes.ActivitySink
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalize()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := event.Metadata()
	record := usertypes.ActivityRecord{
		ActorID:    identity(event.ActorID, "actor_ref", data),
		UserID:     identity(event.UserID, "user_ref", data),
		Verb:       event.Verb,
		ObjectType: activity.ObjectTypeSetting,
		ObjectID:   event.ObjectID(),
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func identity(id, ref string, data map[string]any) uuid.UUID {
	if id == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		data[ref] = id
		return uuid.Nil
	}
	return parsed
}
