package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionText           QuestionType = "TEXT"
	QuestionTextarea       QuestionType = "TEXTAREA"
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionRating         QuestionType = "RATING"
)

var QuestionTypes = []QuestionType{
	QuestionText,
	QuestionTextarea,
	QuestionSingleChoice,
	QuestionMultipleChoice,
	QuestionRating,
}

func (t QuestionType) Valid() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// HasOptions reports whether answers are picked from Question.Options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice || t == QuestionRating
}

type Question struct {
	ID       string                     `gorm:"column:id;primaryKey;size:36" json:"id"`
	SurveyID string                     `gorm:"column:survey_id;size:36;not null;index" json:"surveyId"`
	Order    int                        `gorm:"column:sort_order;not null;default:0" json:"order"`
	Text     string                     `gorm:"column:text;type:text;not null" json:"text"`
	Type     QuestionType               `gorm:"column:type;size:30;not null" json:"type"`
	Required bool                       `gorm:"column:required;not null;default:false" json:"required"`
	Options  datatypes.JSONSlice[string] `gorm:"column:options;type:text" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	if q.Options == nil {
		q.Options = datatypes.JSONSlice[string]{}
	}
	return nil
}
