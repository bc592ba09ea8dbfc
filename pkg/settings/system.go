package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	powermenu "github.com/goliatone/go-powermenu"
	"github.com/goliatone/go-powermenu/pkg/activity"
	"github.com/spf13/cast"
)

// NamespaceSystem is the namespace holding device and per-user system
// settings such as powermenu.SettingLockscreenPowerMenu.
const NamespaceSystem = "system"

var _ powermenu.PreferenceStore = (*SystemSettings)(nil)

// SystemSettings reads and writes integer settings for the current user,
// layering the user's values over system defaults.
type SystemSettings struct {
	resolver  Resolver
	users     *UserTracker
	namespace string
	emitter   *activity.Emitter
	actorID   string
}

// SystemOption configures SystemSettings.
type SystemOption func(*SystemSettings)

// WithNamespace overrides NamespaceSystem.
func WithNamespace(namespace string) SystemOption {
	return func(s *SystemSettings) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithActivity emits an activity event for every write.
func WithActivity(emitter *activity.Emitter) SystemOption {
	return func(s *SystemSettings) {
		s.emitter = emitter
	}
}

// WithActor records actorID as the actor of emitted activity events.
func WithActor(actorID string) SystemOption {
	return func(s *SystemSettings) {
		s.actorID = actorID
	}
}

func NewSystemSettings(store Store, users *UserTracker, opts ...SystemOption) *SystemSettings {
	s := &SystemSettings{
		resolver:  Resolver{Store: store},
		users:     users,
		namespace: NamespaceSystem,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ReadIntForCurrentUser implements powermenu.PreferenceStore.
func (s *SystemSettings) ReadIntForCurrentUser(key string, def int) (int, error) {
	return s.ReadIntForUser(context.Background(), s.users.Current(), key, def)
}

// ReadIntForUser returns the value of key for userID, or def when the key is
// unset or not an integer. Store failures are returned.
func (s *SystemSettings) ReadIntForUser(ctx context.Context, userID, key string, def int) (int, error) {
	merged, err := s.resolver.Resolve(ctx, s.namespace, s.scopes(userID)...)
	if err != nil {
		return def, err
	}
	value, ok := intValue(merged[key])
	if !ok {
		return def, nil
	}
	return value, nil
}

// intValue accepts integer kinds and base-10 integer strings. Floats, bools
// and anything else are treated as unparseable.
func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		value, err := cast.ToIntE(v)
		return value, err == nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		value, err := cast.ToIntE(n)
		return value, err == nil
	case string:
		value, err := strconv.Atoi(strings.TrimSpace(v))
		return value, err == nil
	default:
		return 0, false
	}
}

// Trace reports where the value of key for userID comes from.
func (s *SystemSettings) Trace(ctx context.Context, userID, key string) (Trace, error) {
	return s.resolver.Trace(ctx, s.namespace, key, s.scopes(userID)...)
}

// PutIntForUser stores value under key for userID.
func (s *SystemSettings) PutIntForUser(ctx context.Context, userID, key string, value int) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.put(ctx, UserScope(userID), key, value)
}

// PutSystemInt stores a device-wide default.
func (s *SystemSettings) PutSystemInt(ctx context.Context, key string, value int) error {
	return s.put(ctx, SystemScope(), key, value)
}

// DeleteForUser removes key for userID so reads fall back to the system
// default.
func (s *SystemSettings) DeleteForUser(ctx context.Context, userID, key string) error {
	if userID == "" {
		return ErrUserRequired
	}
	scope := UserScope(userID)
	var old any
	var existed bool
	meta, err := s.mutate(ctx, scope, func(snapshot Snapshot) error {
		old, existed = snapshot[key]
		delete(snapshot, key)
		return nil
	})
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	return s.emit(ctx, activity.Deleted(s.change(scope, key, old, nil, meta)))
}

func (s *SystemSettings) put(ctx context.Context, scope Scope, key string, value int) error {
	if key == "" {
		return fmt.Errorf("settings: key is required")
	}
	var old any
	meta, err := s.mutate(ctx, scope, func(snapshot Snapshot) error {
		old = snapshot[key]
		snapshot[key] = value
		return nil
	})
	if err != nil {
		return err
	}
	return s.emit(ctx, activity.Updated(s.change(scope, key, old, value, meta)))
}

// mutate applies fn against the latest snapshot, reloading and retrying
// when another writer saved in between.
func (s *SystemSettings) mutate(ctx context.Context, scope Scope, fn Mutator) (Meta, error) {
	ref := Ref{Namespace: s.namespace, Scope: scope}
	for {
		_, meta, err := s.resolver.Mutate(ctx, ref, Meta{}, fn)
		if !errors.Is(err, ErrETagMismatch) {
			return meta, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return meta, ctxErr
		}
	}
}

func (s *SystemSettings) change(scope Scope, key string, old, value any, meta Meta) activity.Event {
	return activity.Event{
		ActorID:    s.actorID,
		UserID:     scope.UserID,
		Namespace:  s.namespace,
		Key:        key,
		Scope:      scope.Name,
		SnapshotID: meta.SnapshotID,
		OldValue:   old,
		NewValue:   value,
		OccurredAt: meta.UpdatedAt,
	}
}

func (s *SystemSettings) emit(ctx context.Context, event activity.Event) error {
	if err := s.emitter.Emit(ctx, event); err != nil {
		return fmt.Errorf("settings: activity: %w", err)
	}
	return nil
}

func (s *SystemSettings) scopes(userID string) []Scope {
	scopes := []Scope{SystemScope()}
	if userID != "" {
		scopes = append(scopes, UserScope(userID))
	}
	return scopes
}
