package powermenu

import (
	"context"
	"errors"
)

// ErrNilSource is returned when an enabled Signal is built without its
// upstream collaborators.
var ErrNilSource = errors.New("powermenu: lock state source and preference store are required")

// Signal publishes whether the power-control affordance should be shown.
//
// The variant is fixed at construction: a disabled Signal is a constant false
// that never touches its collaborators, an enabled Signal recomputes on every
// unlock-state notification.
type Signal struct {
	lock    LockStateSource
	prefs   PreferenceStore
	enabled bool
	cfg     signalConfig
	observe func(ctx context.Context) *Stream
}

// New builds a Signal. When powerControlEnabled is false lock and prefs may be
// nil.
func New(lock LockStateSource, prefs PreferenceStore, powerControlEnabled bool, opts ...Option) (*Signal, error) {
	s := &Signal{
		lock:    lock,
		prefs:   prefs,
		enabled: powerControlEnabled,
		cfg:     applyOptions(opts),
	}
	if !powerControlEnabled {
		s.observe = s.observeConstant
		return s, nil
	}
	if lock == nil || prefs == nil {
		return nil, ErrNilSource
	}
	s.observe = s.observeLive
	return s, nil
}

// Enabled reports the capability flag the Signal was built with.
func (s *Signal) Enabled() bool {
	return s.enabled
}

// Component returns the tag attached to log events.
func (s *Signal) Component() string {
	return s.cfg.component
}

// Observe starts a new observation session. The current value is emitted
// before Observe returns. The stream is torn down by Close, by cancellation of
// ctx, or by an upstream read fault.
func (s *Signal) Observe(ctx context.Context) *Stream {
	return s.observe(ctx)
}

// Current computes the visibility once without subscribing.
func (s *Signal) Current() (bool, error) {
	if !s.enabled {
		return false, nil
	}
	return s.compute()
}

func (s *Signal) observeConstant(ctx context.Context) *Stream {
	stream := newStream(s.cfg)
	stream.offer(false)
	stream.watch(ctx)
	return stream
}

func (s *Signal) observeLive(ctx context.Context) *Stream {
	stream := newStream(s.cfg)
	update := func() {
		stream.publish(s.compute)
	}
	handle := s.lock.AddListener(update)
	stream.attach(func() {
		s.lock.RemoveListener(handle)
	})
	update()
	stream.watch(ctx)
	return stream
}

func (s *Signal) compute() (bool, error) {
	state := LockState{
		Unlocked:     s.lock.IsUnlocked(),
		SecureMethod: s.lock.IsMethodSecure(),
	}
	pref, err := s.prefs.ReadIntForCurrentUser(s.cfg.settingKey, DefaultPowerMenuValue)
	if err != nil {
		return false, readFault("preference "+s.cfg.settingKey, err)
	}
	visible, err := s.cfg.policy.Visible(Inputs{
		State:      state,
		Preference: pref,
		Component:  s.cfg.component,
	})
	if err != nil {
		return false, readFault("policy", err)
	}
	return visible, nil
}
