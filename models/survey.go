package models

import (
	"time"

	"gorm.io/gorm"
)

type Survey struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	AppID      string    `gorm:"column:app_id;size:36;not null;uniqueIndex:idx_surveys_app_slug" json:"appId"`
	Title      string    `gorm:"column:title;size:255;not null" json:"title"`
	Slug       string    `gorm:"column:slug;size:100;not null;uniqueIndex:idx_surveys_app_slug" json:"slug"`
	IsActive   bool      `gorm:"column:is_active;not null;default:false" json:"isActive"`
	ThemeColor string    `gorm:"column:theme_color;size:7" json:"themeColor"`
	Notes      string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Only populated by listing queries that select it.
	ResponseCount int64 `gorm:"column:response_count;->;-:migration" json:"responseCount"`

	App       *App       `gorm:"foreignKey:AppID" json:"app,omitempty"`
	Questions []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Responses []Response `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

func (s *Survey) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// QuestionByID returns the loaded question with the given id, or nil.
func (s *Survey) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
