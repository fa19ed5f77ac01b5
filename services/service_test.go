package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/database/databasetest"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/models"
)

var (
	admin  = &auth.Session{UserID: "admin-1", Name: "root", Role: auth.RoleAdmin, IP: "10.0.0.1"}
	member = &auth.Session{UserID: "user-1", Name: "member", Role: auth.RoleUser, IP: "10.0.0.2"}
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := databasetest.New(t)
	store, err := exports.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := New(db, store)
	t.Cleanup(svc.Wait)
	return svc, db
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func auditActions(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var actions []string
	require.NoError(t, db.Model(&models.AuditLog{}).Order("created_at, id").Pluck("action", &actions).Error)
	return actions
}
