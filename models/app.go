package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App is the top-level namespace that owns surveys.
type App struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:100;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Surveys []Survey `gorm:"foreignKey:AppID;constraint:OnDelete:CASCADE" json:"surveys,omitempty"`
}

func (App) TableName() string {
	return "apps"
}

func (a *App) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// ensureID fills an empty primary key with a random UUID.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
