package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/metrics"
	"github.com/vnkhanh/survey-hub/models"
)

// GetAppBySlug returns nil when no app has the slug.
func (s *Service) GetAppBySlug(ctx context.Context, slug string) (*models.App, error) {
	var app models.App
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetPublicSurvey resolves an active survey of an app with its questions in
// display order. It returns nil when the app is unknown or the survey is
// missing or inactive.
func (s *Service) GetPublicSurvey(ctx context.Context, appSlug, surveySlug string) (*models.Survey, error) {
	app, err := s.GetAppBySlug(ctx, appSlug)
	if err != nil || app == nil {
		return nil, err
	}

	var survey models.Survey
	err = s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Where("app_id = ? AND slug = ? AND is_active = ?", app.ID, surveySlug, true).
		First(&survey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	survey.App = app
	return &survey, nil
}

// SubmitResult is either {success, responseId} or {error}.
type SubmitResult struct {
	Success    bool   `json:"success,omitempty"`
	ResponseID string `json:"responseId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// submitError is a rejection the respondent can act on.
type submitError struct{ msg string }

func (e *submitError) Error() string { return e.msg }

func rejectf(format string, args ...any) error {
	return &submitError{msg: fmt.Sprintf(format, args...)}
}

const msgSaveFailed = "We could not save your response. Please try again."

// SubmitSurvey stores one response with one answer per entry of answers.
// List values are flattened by joining with a comma; the list itself is kept
// alongside. The response and its answers are written in one transaction.
// Failures come back as SubmitResult.Error, never as a panic.
func (s *Service) SubmitSurvey(ctx context.Context, surveyID, userID string, answers map[string]forms.AnswerValue) SubmitResult {
	id, err := s.submit(ctx, surveyID, userID, answers)
	if err == nil {
		metrics.RecordSubmission("success")
		log.WithFields(log.Fields{"survey": surveyID, "response": id}).Debug("response stored")
		return SubmitResult{Success: true, ResponseID: id}
	}

	var rejected *submitError
	if errors.As(err, &rejected) {
		metrics.RecordSubmission("invalid")
		log.WithFields(log.Fields{"survey": surveyID, "reason": rejected.msg}).Debug("submission rejected")
		return SubmitResult{Error: rejected.msg}
	}

	metrics.RecordSubmission("error")
	log.WithFields(log.Fields{"code": "db.insert_response", "survey": surveyID}).WithError(err).Error("could not store response")
	return SubmitResult{Error: msgSaveFailed}
}

func (s *Service) submit(ctx context.Context, surveyID, userID string, answers map[string]forms.AnswerValue) (string, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).Preload("Questions").Where("id = ?", surveyID).First(&survey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", rejectf("Survey not found.")
	}
	if err != nil {
		return "", fmt.Errorf("load survey: %w", err)
	}
	if !survey.IsActive {
		return "", rejectf("This survey is not accepting responses.")
	}
	if err := checkAnswers(&survey, answers); err != nil {
		return "", err
	}

	qids := make([]string, 0, len(answers))
	for qid := range answers {
		qids = append(qids, qid)
	}
	sort.Strings(qids)

	var responseID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp := models.Response{SurveyID: survey.ID, UserID: strings.TrimSpace(userID)}
		if err := tx.Create(&resp).Error; err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
		if len(qids) > 0 {
			rows := make([]models.Answer, 0, len(qids))
			for _, qid := range qids {
				a := answers[qid]
				rows = append(rows, models.Answer{
					ResponseID: resp.ID,
					QuestionID: qid,
					Value:      a.String(),
					Values:     a.Values(),
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		responseID = resp.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return responseID, nil
}

func checkAnswers(survey *models.Survey, answers map[string]forms.AnswerValue) error {
	for qid := range answers {
		if survey.QuestionByID(qid) == nil {
			return rejectf("Unknown question %q.", qid)
		}
	}

	for _, q := range survey.Questions {
		a, ok := answers[q.ID]
		if !ok || a.IsBlank() {
			if q.Required {
				return rejectf("%q is required.", q.Text)
			}
			continue
		}
		if !q.Type.HasOptions() {
			continue
		}

		values := a.Values()
		if q.Type != models.QuestionMultipleChoice && len(values) > 1 {
			return rejectf("%q accepts a single choice.", q.Text)
		}
		for _, v := range values {
			if v == "" && !q.Required {
				continue
			}
			if !contains(q.Options, v) {
				return rejectf("%q is not an option of %q.", v, q.Text)
			}
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
