package services

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
)

func questionInput(in forms.QuestionInput) (forms.QuestionInput, error) {
	res := forms.Validate(in.Normalize())
	in, ok := res.Valid()
	if !ok {
		return in, res.Err()
	}
	return in, nil
}

// AddQuestion appends a question after the last one of the survey.
func (s *Service) AddQuestion(ctx context.Context, sess *auth.Session, surveyID string, in forms.QuestionInput) (*models.Question, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := questionInput(in)
	if err != nil {
		return nil, err
	}

	var q models.Question
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Survey{}, surveyID); err != nil {
			return err
		}
		var next int
		if err := tx.Model(&models.Question{}).
			Where("survey_id = ?", surveyID).
			Select("COALESCE(MAX(sort_order) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		q = newQuestion(in, next)
		q.SurveyID = surveyID
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		return audit(tx, sess, "question.create", "question", q.ID, q.Text)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion replaces text, type, required flag and options. The position
// is kept.
func (s *Service) UpdateQuestion(ctx context.Context, sess *auth.Session, id string, in forms.QuestionInput) (*models.Question, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	in, err := questionInput(in)
	if err != nil {
		return nil, err
	}

	var q models.Question
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&q).Error; err != nil {
			return translate(err)
		}
		q.Text = in.Text
		q.Type = in.Type
		q.Required = in.Required
		q.Options = datatypes.JSONSlice[string](append([]string{}, in.Options...))
		if err := tx.Save(&q).Error; err != nil {
			return err
		}
		return audit(tx, sess, "question.update", "question", q.ID, q.Text)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuestion removes a question and its answers, shifting later questions
// up so the order stays dense.
func (s *Service) DeleteQuestion(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.EnsureAdmin(sess); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Question
		if err := tx.Where("id = ?", id).First(&q).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&q).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Question{}).
			Where("survey_id = ? AND sort_order > ?", q.SurveyID, q.Order).
			Update("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return err
		}
		return audit(tx, sess, "question.delete", "question", q.ID, q.Text)
	})
}

// ReorderQuestions sets the display order to the order of ids, which must list
// every question of the survey exactly once.
func (s *Service) ReorderQuestions(ctx context.Context, sess *auth.Session, surveyID string, in forms.ReorderInput) ([]models.Question, error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	res := forms.Validate(in)
	if err := res.Err(); err != nil {
		return nil, err
	}

	questions := []models.Question{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Survey{}, surveyID); err != nil {
			return err
		}
		var total, matched int64
		if err := tx.Model(&models.Question{}).Where("survey_id = ?", surveyID).Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Question{}).Where("survey_id = ? AND id IN ?", surveyID, in.IDs).Count(&matched).Error; err != nil {
			return err
		}
		if matched != int64(len(in.IDs)) || total != matched {
			return forms.Invalid("ids", fmt.Sprintf("must list each of the survey's %d questions exactly once", total))
		}

		for idx, qid := range in.IDs {
			if err := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", qid, surveyID).
				Update("sort_order", idx).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("survey_id = ?", surveyID).Order("sort_order, id").Find(&questions).Error; err != nil {
			return err
		}
		return audit(tx, sess, "question.reorder", "survey", surveyID, "")
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}
