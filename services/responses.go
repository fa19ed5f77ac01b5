package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
)

// ListResponses pages through a survey's responses, newest first, with answers.
func (s *Service) ListResponses(ctx context.Context, sess *auth.Session, surveyID string, p forms.Pagination) (*Page[models.Response], error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Survey{}, surveyID); err != nil {
		return nil, err
	}
	p = p.Clamp()

	page := &Page[models.Response]{Page: p.Page, Limit: p.Limit, Items: []models.Response{}}
	q := db.Model(&models.Response{}).Where("survey_id = ?", surveyID)
	if err := q.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	err := q.Preload("Answers").
		Order("created_at DESC, id").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&page.Items).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}
