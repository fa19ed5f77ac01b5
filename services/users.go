package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

func (s *Service) GetUsers(ctx context.Context, sess *auth.Session) ([]models.User, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func emailPtr(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

func (s *Service) CreateUser(ctx context.Context, sess *auth.Session, in forms.UserInput) (*models.User, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return nil, res.Err()
	}
	return s.createUser(ctx, sess, in)
}

// BootstrapUser creates a user without a session, for the command line.
func (s *Service) BootstrapUser(ctx context.Context, in forms.UserInput) (*models.User, error) {
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return nil, res.Err()
	}
	return s.createUser(ctx, nil, in)
}

func (s *Service) createUser(ctx context.Context, sess *auth.Session, in forms.UserInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         in.Name,
		Email:        emailPtr(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueUser(tx, "", in.Name, in.Email); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "user.create", "user", user.ID, user.Name+" "+user.Role)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes name, email and role, and the password when one is given.
func (s *Service) UpdateUser(ctx context.Context, sess *auth.Session, id string, in forms.UserUpdateInput) (*models.User, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return nil, res.Err()
	}
	if id == sess.UserID && in.Role != string(auth.RoleAdmin) {
		return nil, ErrSelfDemote
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return translate(err)
		}
		if err := uniqueUser(tx, id, in.Name, in.Email); err != nil {
			return err
		}
		user.Name = in.Name
		user.Email = emailPtr(in.Email)
		user.Role = in.Role
		details := user.Name + " " + user.Role
		if in.Password != "" {
			hash, err := utils.HashPassword(in.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			details += " password changed"
		}
		if err := tx.Save(&user).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "user.update", "user", user.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) DeleteUser(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.EnsureAdmin(sess); err != nil {
		return err
	}
	if id == sess.UserID {
		return ErrSelfDelete
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return audit(tx, sess, "user.delete", "user", user.ID, user.Name)
	})
}

// uniqueUser fails with a field error when the name or email belongs to a
// user other than exceptID.
func uniqueUser(tx *gorm.DB, exceptID, name, email string) error {
	var other models.User
	err := tx.Where("name = ? AND id <> ?", name, exceptID).First(&other).Error
	if err == nil {
		return forms.Invalid("name", "is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if email == "" {
		return nil
	}
	err = tx.Where("email = ? AND id <> ?", email, exceptID).First(&other).Error
	if err == nil {
		return forms.Invalid("email", "is already used by another account")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
