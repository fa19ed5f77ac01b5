package services

import (
	"context"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

const responseCountColumn = "(SELECT COUNT(*) FROM responses WHERE responses.survey_id = surveys.id) AS response_count"

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

// ListSurveys returns the surveys of an app with their response counts.
func (s *Service) ListSurveys(ctx context.Context, sess *auth.Session, appID string) ([]models.Survey, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.App{}, appID); err != nil {
		return nil, err
	}

	surveys := []models.Survey{}
	err := db.Model(&models.Survey{}).
		Select("surveys.*, " + responseCountColumn).
		Where("app_id = ?", appID).
		Order("created_at DESC, id").
		Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

// GetSurvey loads a survey with its app and ordered questions.
func (s *Service) GetSurvey(ctx context.Context, sess *auth.Session, id string) (*models.Survey, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Select("surveys.*, " + responseCountColumn).
		Preload("App").
		Preload("Questions", orderedQuestions).
		Where("id = ?", id).
		First(&survey).Error
	if err != nil {
		return nil, translate(err)
	}
	return &survey, nil
}

func surveyInput(in forms.SurveyInput) (forms.SurveyInput, error) {
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return in, res.Err()
	}
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Title)
		if in.Slug == "" {
			return in, forms.Invalid("slug", "could not be derived from the title, please set one")
		}
	}
	if in.ThemeColor != "" {
		in.ThemeColor, _ = utils.NormalizeHex(in.ThemeColor)
	}
	return in, nil
}

// CreateSurvey adds a survey to an app, with any initial questions in the
// order given.
func (s *Service) CreateSurvey(ctx context.Context, sess *auth.Session, appID string, in forms.SurveyInput) (*models.Survey, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := surveyInput(in)
	if err != nil {
		return nil, err
	}

	survey := models.Survey{
		AppID:      appID,
		Title:      in.Title,
		Slug:       in.Slug,
		IsActive:   in.IsActive,
		ThemeColor: in.ThemeColor,
		Notes:      in.Notes,
	}
	for i, q := range in.Questions {
		survey.Questions = append(survey.Questions, newQuestion(q, i))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.App{}, appID); err != nil {
			return err
		}
		if err := slugTaken(tx, &models.Survey{}, "app_id = ? AND slug = ?", appID, in.Slug); err != nil {
			return err
		}
		if err := tx.Create(&survey).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "survey.create", "survey", survey.ID, survey.Slug+" ("+strconv.Itoa(len(survey.Questions))+" questions)")
	})
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// UpdateSurvey replaces the survey settings. Questions are edited separately.
func (s *Service) UpdateSurvey(ctx context.Context, sess *auth.Session, id string, in forms.SurveyInput) (*models.Survey, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := surveyInput(in)
	if err != nil {
		return nil, err
	}

	var survey models.Survey
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&survey).Error; err != nil {
			return translate(err)
		}
		if err := slugTaken(tx, &models.Survey{}, "app_id = ? AND slug = ? AND id <> ?", survey.AppID, in.Slug, id); err != nil {
			return err
		}
		survey.Title = in.Title
		survey.Slug = in.Slug
		survey.IsActive = in.IsActive
		survey.ThemeColor = in.ThemeColor
		survey.Notes = in.Notes
		if err := tx.Save(&survey).Error; err != nil {
			return translate(err)
		}
		return audit(tx, sess, "survey.update", "survey", survey.ID, survey.Slug)
	})
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// SetSurveyActive opens or closes a survey to the public.
func (s *Service) SetSurveyActive(ctx context.Context, sess *auth.Session, id string, active bool) (*models.Survey, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	var survey models.Survey
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&survey).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&survey).Update("is_active", active).Error; err != nil {
			return err
		}
		survey.IsActive = active
		action := "survey.deactivate"
		if active {
			action = "survey.activate"
		}
		return audit(tx, sess, action, "survey", survey.ID, survey.Slug)
	})
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (s *Service) DeleteSurvey(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.EnsureAdmin(sess); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var survey models.Survey
		if err := tx.Where("id = ?", id).First(&survey).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&survey).Error; err != nil {
			return err
		}
		return audit(tx, sess, "survey.delete", "survey", survey.ID, survey.Slug)
	})
}

func newQuestion(in forms.QuestionInput, order int) models.Question {
	return models.Question{
		Order:    order,
		Text:     in.Text,
		Type:     in.Type,
		Required: in.Required,
		Options:  datatypes.JSONSlice[string](append([]string{}, in.Options...)),
	}
}

// exists returns ErrNotFound unless a row of model has the id.
func exists(tx *gorm.DB, model interface{}, id string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
