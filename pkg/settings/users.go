package settings

import (
	"strings"
	"sync"
)

// UserTracker holds the id of the foreground user.
type UserTracker struct {
	mu      sync.RWMutex
	current string
}

func NewUserTracker(initial string) *UserTracker {
	return &UserTracker{current: strings.TrimSpace(initial)}
}

// Current returns the active user id. An empty id means only system
// defaults apply.
func (t *UserTracker) Current() string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Switch makes userID the active user and returns the previous one.
func (t *UserTracker) Switch(userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	previous := t.current
	t.current = strings.TrimSpace(userID)
	return previous
}
