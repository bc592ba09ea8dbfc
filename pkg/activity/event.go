package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	VerbSettingUpdated = "settings.updated"
	VerbSettingDeleted = "settings.deleted"

	ObjectTypeSetting = "setting"
)

// Event records one write to a scoped setting. OldValue is nil when the key
// was not set before; NewValue is nil for deletions.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	Namespace  string
	Key        string
	Scope      string
	SnapshotID string
	OldValue   any
	NewValue   any
	Channel    string
	OccurredAt time.Time
}

// Updated returns the event for a stored value.
func Updated(e Event) Event {
	e.Verb = VerbSettingUpdated
	return e
}

// Deleted returns the event for a removed value.
func Deleted(e Event) Event {
	e.Verb = VerbSettingDeleted
	e.NewValue = nil
	return e
}

// ObjectID is `namespace/key`, or ObjectTypeSetting when both are empty.
func (e Event) ObjectID() string {
	id := strings.Trim(e.Namespace+"/"+e.Key, "/")
	if id == "" {
		return ObjectTypeSetting
	}
	return id
}

// Metadata flattens the setting fields for sinks that take a generic map.
func (e Event) Metadata() map[string]any {
	out := map[string]any{}
	put := func(name string, value any) {
		if s, ok := value.(string); ok && s == "" {
			return
		}
		if value != nil {
			out[name] = value
		}
	}
	put("namespace", e.Namespace)
	put("key", e.Key)
	put("scope", e.Scope)
	put("snapshot_id", e.SnapshotID)
	put("old_value", e.OldValue)
	put("new_value", e.NewValue)
	return out
}

// Normalize trims identifiers and stamps OccurredAt when unset.
func (e Event) Normalize() Event {
	for _, field := range []*string{&e.Verb, &e.ActorID, &e.UserID, &e.Namespace, &e.Key, &e.Scope, &e.SnapshotID, &e.Channel} {
		*field = strings.TrimSpace(*field)
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// Valid reports whether the event names a verb and a setting key.
func (e Event) Valid() bool {
	return e.Verb != "" && e.Key != ""
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers an event to every hook in order. Invalid events are
// dropped; every hook runs even when an earlier one fails.
type Hooks []Hook

func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = event.Normalize()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("activity: hook %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
