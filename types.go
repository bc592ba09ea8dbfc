package powermenu

const (
	// SettingLockscreenPowerMenu is the per-user preference controlling whether
	// the power menu may be opened while the device is locked.
	SettingLockscreenPowerMenu = "lockscreen_enable_power_menu"
	// DefaultPowerMenuValue is returned when no preference is stored. Any value
	// other than 0 keeps the power menu available.
	DefaultPowerMenuValue = 1
	// DefaultComponent tags log events emitted by a Signal.
	DefaultComponent = "powermenu.visibility"
)

// LockState is a read-only snapshot of the device lock state.
type LockState struct {
	Unlocked     bool `json:"unlocked"`
	SecureMethod bool `json:"secure_method"`
}

// ListenerHandle identifies one listener registration on a LockStateSource.
type ListenerHandle uint64

// LockStateSource reports lock state synchronously and notifies listeners on
// unlock-state transitions. Listener callbacks carry no payload; consumers
// re-read the current state after being notified.
//
// Listeners may call RemoveListener from inside the callback, so
// implementations must not hold their registry lock while invoking them.
type LockStateSource interface {
	IsUnlocked() bool
	IsMethodSecure() bool
	AddListener(fn func()) ListenerHandle
	RemoveListener(handle ListenerHandle)
}

// PreferenceStore reads integer preferences scoped to the active user.
// Reads are expected to be fast in-memory lookups.
type PreferenceStore interface {
	ReadIntForCurrentUser(key string, def int) (int, error)
}

// PreferenceStoreFunc adapts a function to PreferenceStore.
type PreferenceStoreFunc func(key string, def int) (int, error)

// ReadIntForCurrentUser implements PreferenceStore.
func (f PreferenceStoreFunc) ReadIntForCurrentUser(key string, def int) (int, error) {
	if f == nil {
		return def, nil
	}
	return f(key, def)
}

// Option configures a Signal.
type Option func(*signalConfig)

type signalConfig struct {
	policy     Policy
	logger     Logger
	component  string
	settingKey string
	distinct   bool
}

func applyOptions(opts []Option) signalConfig {
	cfg := signalConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.policy == nil {
		cfg.policy = DefaultPolicy
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.component == "" {
		cfg.component = DefaultComponent
	}
	if cfg.settingKey == "" {
		cfg.settingKey = SettingLockscreenPowerMenu
	}
	return cfg
}

// WithPolicy replaces the visibility policy used on every recomputation.
func WithPolicy(policy Policy) Option {
	return func(cfg *signalConfig) {
		cfg.policy = policy
	}
}

// WithComponent sets the component tag attached to every log event.
func WithComponent(component string) Option {
	return func(cfg *signalConfig) {
		cfg.component = component
	}
}

// WithSettingKey overrides the preference key read on each recomputation.
func WithSettingKey(key string) Option {
	return func(cfg *signalConfig) {
		cfg.settingKey = key
	}
}

// WithDistinct suppresses emissions equal to the previous value delivered on
// the same stream. By default every upstream notification is republished.
func WithDistinct() Option {
	return func(cfg *signalConfig) {
		cfg.distinct = true
	}
}
