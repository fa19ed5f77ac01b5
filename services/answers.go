package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/models"
)

const answerRowColumns = `apps.id AS app_id, apps.name AS app_name,
	surveys.id AS survey_id, surveys.title AS survey_title,
	responses.id AS response_id, responses.user_id AS user_id, responses.created_at AS submitted_at,
	questions.id AS question_id, questions.sort_order AS question_order, questions.text AS question_text,
	answers.value AS value`

// GetAnswers flattens every answer into one row per answer, optionally only
// for one app. Rows are grouped by response, newest first, then by question
// order.
func (s *Service) GetAnswers(ctx context.Context, sess *auth.Session, appID string) ([]models.AnswerRow, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	if appID != "" {
		if err := exists(s.db.WithContext(ctx), &models.App{}, appID); err != nil {
			return nil, err
		}
	}
	return answerRows(s.db.WithContext(ctx), appID)
}

func answerRows(db *gorm.DB, appID string) ([]models.AnswerRow, error) {
	q := db.Table("answers").
		Select(answerRowColumns).
		Joins("JOIN responses ON responses.id = answers.response_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Joins("JOIN surveys ON surveys.id = responses.survey_id").
		Joins("JOIN apps ON apps.id = surveys.app_id")
	if appID != "" {
		q = q.Where("apps.id = ?", appID)
	}

	rows := []models.AnswerRow{}
	err := q.Order("responses.created_at DESC, responses.id, questions.sort_order, questions.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
