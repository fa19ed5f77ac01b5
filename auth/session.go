// Package auth carries the caller's session explicitly through the service
// layer and holds the role gates every protected action runs.
package auth

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

var (
	ErrNotAuthenticated = errors.New("you must be signed in")
	ErrNotAdmin         = errors.New("only administrators can do this")
)

// Session is the resolved identity of the caller for a single request.
type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IP        string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// EnsureAuthenticated fails unless a session exists.
func EnsureAuthenticated(s *Session) error {
	if s == nil || s.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// EnsureAdmin fails unless the session belongs to an ADMIN.
func EnsureAdmin(s *Session) error {
	if err := EnsureAuthenticated(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}
