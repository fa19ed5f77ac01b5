package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ExportQueued     = "queued"
	ExportProcessing = "processing"
	ExportDone       = "done"
	ExportFailed     = "failed"
)

type ExportJob struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	AppID       *string   `gorm:"column:app_id;size:36" json:"appId,omitempty"`
	Format      string    `gorm:"column:format;size:10;not null" json:"format"` // csv, xlsx
	Status      string    `gorm:"column:status;size:20;not null;default:'queued'" json:"status"`
	Storage     string    `gorm:"column:storage;size:20" json:"storage,omitempty"`
	Location    string    `gorm:"column:location;type:text" json:"-"`
	Error       string    `gorm:"column:error;type:text" json:"error,omitempty"`
	RequestedBy string    `gorm:"column:requested_by;size:36" json:"requestedBy"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ExportJob) TableName() string {
	return "export_jobs"
}

func (j *ExportJob) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}
