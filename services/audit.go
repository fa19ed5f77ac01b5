package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
)

// audit records an action inside the caller's transaction.
func audit(tx *gorm.DB, sess *auth.Session, action, targetType, targetID, details string) error {
	entry := models.AuditLog{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if sess != nil {
		entry.ActorID = sess.UserID
		entry.ActorName = sess.Name
		entry.IP = sess.IP
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns the newest entries first, optionally filtered by action.
func (s *Service) ListAuditLogs(ctx context.Context, sess *auth.Session, p forms.Pagination, action string) (*Page[models.AuditLog], error) {
	if err := auth.EnsureAdmin(sess); err != nil {
		return nil, err
	}
	p = p.Clamp()

	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if action != "" {
		q = q.Where("action = ?", action)
	}

	page := &Page[models.AuditLog]{Page: p.Page, Limit: p.Limit, Items: []models.AuditLog{}}
	if err := q.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := q.Order("created_at DESC, id").Limit(p.Limit).Offset(p.Offset()).Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}
