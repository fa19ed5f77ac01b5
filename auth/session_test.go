package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureAdmin(t *testing.T) {
	tests := []struct {
		name string
		sess *Session
		want error
	}{
		{"no session", nil, ErrNotAuthenticated},
		{"empty user", &Session{Role: RoleAdmin}, ErrNotAuthenticated},
		{"regular user", &Session{UserID: "u1", Role: RoleUser}, ErrNotAdmin},
		{"unknown role", &Session{UserID: "u1", Role: "admin"}, ErrNotAdmin},
		{"admin", &Session{UserID: "u1", Role: RoleAdmin}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureAdmin(tt.sess)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnsureAuthenticated(t *testing.T) {
	assert.ErrorIs(t, EnsureAuthenticated(nil), ErrNotAuthenticated)
	assert.NoError(t, EnsureAuthenticated(&Session{UserID: "u1", Role: RoleUser}))
	assert.NoError(t, EnsureAuthenticated(&Session{UserID: "u2", Role: RoleAdmin}))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("OWNER").Valid())
}
