package settings

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ScopeSystem = "system"
	ScopeUser   = "user"

	// Higher priorities win when layering.
	PrioritySystem = 100
	PriorityUser   = 500
)

// ErrUserRequired indicates a user scope without a user id.
var ErrUserRequired = errors.New("settings: user id is required")

// Scope names a precedence bucket.
type Scope struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	UserID   string `json:"user_id,omitempty"`
}

// SystemScope returns the device-wide scope.
func SystemScope() Scope {
	return Scope{Name: ScopeSystem, Priority: PrioritySystem}
}

// UserScope returns the scope for userID.
func UserScope(userID string) Scope {
	return Scope{Name: ScopeUser, Priority: PriorityUser, UserID: strings.TrimSpace(userID)}
}

func (s Scope) String() string {
	if s.Name == ScopeUser {
		return fmt.Sprintf("%s:%s", s.Name, s.UserID)
	}
	return s.Name
}

// Ref identifies one persisted snapshot.
type Ref struct {
	Namespace string
	Scope     Scope
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Namespace == "" {
		return "", fmt.Errorf("settings: namespace is required")
	}
	switch r.Scope.Name {
	case ScopeSystem:
		return fmt.Sprintf("system/%s", r.Namespace), nil
	case ScopeUser:
		if r.Scope.UserID == "" {
			return "", ErrUserRequired
		}
		return fmt.Sprintf("user/%s/%s", r.Scope.UserID, r.Namespace), nil
	default:
		return "", fmt.Errorf("settings: unsupported scope name %q", r.Scope.Name)
	}
}
