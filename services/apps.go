package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

func (s *Service) ListApps(ctx context.Context, sess *auth.Session) ([]models.App, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	apps := []models.App{}
	if err := s.db.WithContext(ctx).Order("name, id").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Service) GetApp(ctx context.Context, sess *auth.Session, id string) (*models.App, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	var app models.App
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

// appInput validates in and derives the slug from the name when it is empty.
func appInput(in forms.AppInput) (forms.AppInput, error) {
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return in, res.Err()
	}
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Name)
		if in.Slug == "" {
			return in, forms.Invalid("slug", "could not be derived from the name, please set one")
		}
	}
	return in, nil
}

func (s *Service) CreateApp(ctx context.Context, sess *auth.Session, in forms.AppInput) (*models.App, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := appInput(in)
	if err != nil {
		return nil, err
	}

	app := models.App{Name: in.Name, Slug: in.Slug}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := slugTaken(tx, &models.App{}, "slug = ?", in.Slug); err != nil {
			return err
		}
		if err := tx.Create(&app).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "app.create", "app", app.ID, app.Slug)
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Service) UpdateApp(ctx context.Context, sess *auth.Session, id string, in forms.AppInput) (*models.App, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := appInput(in)
	if err != nil {
		return nil, err
	}

	var app models.App
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&app).Error; err != nil {
			return translate(err)
		}
		if err := slugTaken(tx, &models.App{}, "slug = ? AND id <> ?", in.Slug, id); err != nil {
			return err
		}
		app.Name, app.Slug = in.Name, in.Slug
		if err := tx.Save(&app).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "app.update", "app", app.ID, app.Slug)
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApp removes the app together with its surveys and their responses.
func (s *Service) DeleteApp(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.EnsureAdmin(sess); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.App
		if err := tx.Where("id = ?", id).First(&app).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&app).Error; err != nil {
			return err
		}
		return audit(tx, sess, "app.delete", "app", app.ID, app.Slug)
	})
}

// slugTaken reports ErrConflict when a row of model matches the condition.
func slugTaken(tx *gorm.DB, model interface{}, query string, args ...interface{}) error {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("slug: %w", ErrConflict)
	}
	return nil
}
