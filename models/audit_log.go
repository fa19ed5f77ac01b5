package models

import (
	"time"

	"gorm.io/gorm"
)

type AuditLog struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ActorID    string    `gorm:"column:actor_id;size:36;index" json:"actorId"`
	ActorName  string    `gorm:"column:actor_name;size:100" json:"actorName"`
	Action     string    `gorm:"column:action;size:50;not null;index" json:"action"` // e.g. "survey.create"
	TargetType string    `gorm:"column:target_type;size:30" json:"targetType"`
	TargetID   string    `gorm:"column:target_id;size:36" json:"targetId"`
	Details    string    `gorm:"column:details;type:text" json:"details"`
	IP         string    `gorm:"column:ip;size:45" json:"ip"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
