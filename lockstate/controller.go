// Package lockstate provides an in-memory lock state source: the current
// unlocked/secure-method state plus a registry of listeners notified on
// unlock-state transitions.
package lockstate

import (
	"runtime/debug"
	"sync"

	powermenu "github.com/goliatone/go-powermenu"
	"go.uber.org/zap"
)

var _ powermenu.LockStateSource = (*Controller)(nil)

type listener struct {
	handle powermenu.ListenerHandle
	fn     func()
}

// Controller tracks lock state and dispatches change notifications
// synchronously on the goroutine that changed the state. It is safe for
// concurrent use.
type Controller struct {
	mu        sync.RWMutex
	state     powermenu.LockState
	listeners []listener
	nextID    powermenu.ListenerHandle

	logger *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used to report panicking listeners.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInitialState seeds the controller state.
func WithInitialState(state powermenu.LockState) Option {
	return func(c *Controller) {
		c.state = state
	}
}

// NewController creates a controller. The device starts locked with an
// insecure method unless WithInitialState says otherwise.
func NewController(opts ...Option) *Controller {
	c := &Controller{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Controller) IsUnlocked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Unlocked
}

func (c *Controller) IsMethodSecure() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.SecureMethod
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() powermenu.LockState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AddListener registers fn and returns a handle for RemoveListener.
func (c *Controller) AddListener(fn func()) powermenu.ListenerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	handle := c.nextID
	c.listeners = append(c.listeners, listener{handle: handle, fn: fn})
	return handle
}

// RemoveListener drops the registration for handle. Unknown or already
// removed handles are ignored.
func (c *Controller) RemoveListener(handle powermenu.ListenerHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.listeners {
		if l.handle == handle {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (c *Controller) ListenerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listeners)
}

// SetUnlocked records the unlocked state and notifies listeners when it
// changed.
func (c *Controller) SetUnlocked(unlocked bool) {
	c.mu.Lock()
	changed := c.state.Unlocked != unlocked
	c.state.Unlocked = unlocked
	c.mu.Unlock()
	if changed {
		c.NotifyUnlockedChanged()
	}
}

// SetMethodSecure records the security classification of the lock method.
// It does not notify; listeners observe it on the next unlock transition.
func (c *Controller) SetMethodSecure(secure bool) {
	c.mu.Lock()
	c.state.SecureMethod = secure
	c.mu.Unlock()
}

// Update replaces the whole state and notifies listeners when the unlocked
// flag changed.
func (c *Controller) Update(state powermenu.LockState) {
	c.mu.Lock()
	changed := c.state.Unlocked != state.Unlocked
	c.state = state
	c.mu.Unlock()
	if changed {
		c.NotifyUnlockedChanged()
	}
}

// NotifyUnlockedChanged invokes every listener in registration order. The
// listener set is snapshotted first, so listeners may add or remove
// registrations while being notified.
func (c *Controller) NotifyUnlockedChanged() {
	c.mu.RLock()
	snapshot := make([]listener, len(c.listeners))
	copy(snapshot, c.listeners)
	c.mu.RUnlock()

	for _, l := range snapshot {
		c.safeCall(l)
	}
}

func (c *Controller) safeCall(l listener) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("lock state listener panicked",
				zap.Uint64("handle", uint64(l.handle)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	l.fn()
}
