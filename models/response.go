package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Response is one respondent's submission to a survey. Responses are never
// edited after creation.
type Response struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	SurveyID  string    `gorm:"column:survey_id;size:36;not null;index" json:"surveyId"`
	UserID    string    `gorm:"column:user_id;size:255" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// Answer stores the flattened Value alongside the submitted list so multi-valued
// answers containing commas can still be told apart on read-back.
type Answer struct {
	ID         string                     `gorm:"column:id;primaryKey;size:36" json:"id"`
	ResponseID string                     `gorm:"column:response_id;size:36;not null;index" json:"responseId"`
	QuestionID string                     `gorm:"column:question_id;size:36;not null;index" json:"questionId"`
	Value      string                     `gorm:"column:value;type:text" json:"value"`
	Values     datatypes.JSONSlice[string] `gorm:"column:value_list;type:text" json:"values"`
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AnswerRow is the flattened read model behind the answers listing and exports.
type AnswerRow struct {
	AppID         string    `json:"appId"`
	AppName       string    `json:"appName"`
	SurveyID      string    `json:"surveyId"`
	SurveyTitle   string    `json:"surveyTitle"`
	ResponseID    string    `json:"responseId"`
	UserID        string    `json:"userId"`
	SubmittedAt   time.Time `json:"submittedAt"`
	QuestionID    string    `json:"questionId"`
	QuestionOrder int       `json:"questionOrder"`
	QuestionText  string    `json:"questionText"`
	Value         string    `json:"value"`
}
