// Package databasetest opens throwaway in-memory databases carrying the real
// schema, plus a few fixtures shared by the package tests.
package databasetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/database"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

// New returns a migrated sqlite database that lives as long as the test.
// The pool is pinned to one connection so the in-memory database is shared
// by every query.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, config.DriverSQLite))
	return db
}

func SeedApp(t testing.TB, db *gorm.DB, id, name, slug string) models.App {
	t.Helper()
	app := models.App{ID: id, Name: name, Slug: slug}
	require.NoError(t, db.Create(&app).Error)
	return app
}

// SeedSurvey creates a survey and attaches the given questions in order.
func SeedSurvey(t testing.TB, db *gorm.DB, id, appID, slug string, active bool, questions ...models.Question) models.Survey {
	t.Helper()
	survey := models.Survey{ID: id, AppID: appID, Title: "Survey " + slug, Slug: slug, IsActive: active}
	require.NoError(t, db.Create(&survey).Error)
	for i := range questions {
		q := questions[i]
		q.SurveyID = id
		q.Order = i
		if q.Type == "" {
			q.Type = models.QuestionText
		}
		if q.Options == nil {
			q.Options = datatypes.JSONSlice[string]{}
		}
		require.NoError(t, db.Create(&q).Error)
		survey.Questions = append(survey.Questions, q)
	}
	return survey
}

func SeedUser(t testing.TB, db *gorm.DB, id, name, password, role string) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := models.User{ID: id, Name: name, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}
