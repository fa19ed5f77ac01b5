package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

// SignIn checks a name and password and opens a session.
func (s *Service) SignIn(ctx context.Context, name, password, ip string) (*auth.Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user, ip, "password")
}

// SignInWithEmail opens a session for the user owning a verified email.
// Unknown addresses are rejected; accounts are only created by admins.
func (s *Service) SignInWithEmail(ctx context.Context, email, ip string) (*auth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, ip, "google")
}

func (s *Service) openSession(ctx context.Context, user models.User, ip, method string) (*auth.Session, error) {
	sess := sessionFor(user, ip)
	if err := audit(s.db.WithContext(ctx), sess, "auth.sign_in", "user", user.ID, method); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) SignOut(ctx context.Context, sess *auth.Session) error {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return err
	}
	return audit(s.db.WithContext(ctx), sess, "auth.sign_out", "user", sess.UserID, "")
}

// LoadSession rebuilds a session from the store so role changes and deleted
// accounts take effect on the next request.
func (s *Service) LoadSession(ctx context.Context, userID, ip string) (*auth.Session, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotAuthenticated
		}
		return nil, err
	}
	return sessionFor(user, ip), nil
}

// Unknown stored roles get the least privileged one.
func sessionFor(user models.User, ip string) *auth.Session {
	role := auth.Role(user.Role)
	if !role.Valid() {
		role = auth.RoleUser
	}
	return &auth.Session{
		UserID: user.ID,
		Name:   user.Name,
		Role:   role,
		IP:     ip,
	}
}
