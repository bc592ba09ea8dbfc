package lockstate

import (
	"sync"
	"testing"

	powermenu "github.com/goliatone/go-powermenu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestControllerNotifiesOnlyOnUnlockTransitions(t *testing.T) {
	c := NewController()
	calls := 0
	c.AddListener(func() { calls++ })

	c.SetUnlocked(false)
	assert.Equal(t, 0, calls, "no transition from the initial locked state")

	c.SetUnlocked(true)
	c.SetUnlocked(true)
	assert.Equal(t, 1, calls)

	c.SetMethodSecure(true)
	assert.Equal(t, 1, calls, "security classification changes are silent")
	assert.True(t, c.IsMethodSecure())

	c.Update(powermenu.LockState{Unlocked: false, SecureMethod: true})
	assert.Equal(t, 2, calls)

	c.NotifyUnlockedChanged()
	assert.Equal(t, 3, calls)
}

func TestControllerListenersRunInRegistrationOrder(t *testing.T) {
	c := NewController()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		c.AddListener(func() { order = append(order, i) })
	}
	c.NotifyUnlockedChanged()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestControllerRemoveListenerIsIdempotent(t *testing.T) {
	c := NewController()
	first := c.AddListener(func() {})
	second := c.AddListener(func() {})
	require.Equal(t, 2, c.ListenerCount())
	require.NotEqual(t, first, second)

	c.RemoveListener(first)
	c.RemoveListener(first)
	c.RemoveListener(powermenu.ListenerHandle(999))
	assert.Equal(t, 1, c.ListenerCount())

	c.RemoveListener(second)
	assert.Equal(t, 0, c.ListenerCount())
}

func TestControllerListenerMayRemoveItself(t *testing.T) {
	c := NewController()
	var handle powermenu.ListenerHandle
	calls := 0
	handle = c.AddListener(func() {
		calls++
		c.RemoveListener(handle)
	})
	c.NotifyUnlockedChanged()
	c.NotifyUnlockedChanged()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, c.ListenerCount())
}

func TestControllerRecoversPanickingListener(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c := NewController(WithLogger(zap.New(core)))

	reached := false
	c.AddListener(func() { panic("boom") })
	c.AddListener(func() { reached = true })

	require.NotPanics(t, c.NotifyUnlockedChanged)
	assert.True(t, reached, "later listeners still run")
	require.Equal(t, 1, logs.FilterMessage("lock state listener panicked").Len())
}

func TestControllerInitialState(t *testing.T) {
	c := NewController(WithInitialState(powermenu.LockState{Unlocked: true, SecureMethod: true}))
	assert.Equal(t, powermenu.LockState{Unlocked: true, SecureMethod: true}, c.Snapshot())
}

func TestControllerConcurrentRegistration(t *testing.T) {
	c := NewController()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := c.AddListener(func() {})
			c.NotifyUnlockedChanged()
			c.RemoveListener(h)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.ListenerCount())
}
