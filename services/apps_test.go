package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/database/databasetest"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
)

func TestAppsRequireRoles(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateApp(ctx, nil, forms.AppInput{Name: "Acme"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	_, err = svc.CreateApp(ctx, member, forms.AppInput{Name: "Acme"})
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
	assert.ErrorIs(t, svc.DeleteApp(ctx, member, "a1"), auth.ErrNotAdmin)

	_, err = svc.ListApps(ctx, nil)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	apps, err := svc.ListApps(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestCreateApp(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	app, err := svc.CreateApp(ctx, admin, forms.AppInput{Name: "  Customer Feedback "})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "Customer Feedback", app.Name)
	assert.Equal(t, "customer-feedback", app.Slug)

	_, err = svc.CreateApp(ctx, admin, forms.AppInput{Name: "Other", Slug: "customer-feedback"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateApp(ctx, admin, forms.AppInput{Name: "", Slug: "Bad Slug"})
	var fe forms.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "name")
	assert.Contains(t, fe, "slug")

	_, err = svc.CreateApp(ctx, admin, forms.AppInput{Name: "!!!"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe["slug"], "could not be derived")

	assert.Equal(t, []string{"app.create"}, auditActions(t, db))

	got, err := svc.GetApp(ctx, member, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Slug, got.Slug)
	_, err = svc.GetApp(ctx, member, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateApp(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	databasetest.SeedApp(t, db, "a1", "Acme", "acme")
	databasetest.SeedApp(t, db, "a2", "Beta", "beta")

	app, err := svc.UpdateApp(ctx, admin, "a1", forms.AppInput{Name: "Acme Corp", Slug: "acme-corp"})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", app.Slug)

	var stored models.App
	require.NoError(t, db.Where("id = ?", "a1").First(&stored).Error)
	assert.Equal(t, "Acme Corp", stored.Name)

	_, err = svc.UpdateApp(ctx, admin, "a1", forms.AppInput{Name: "Acme", Slug: "beta"})
	assert.ErrorIs(t, err, ErrConflict)

	// Keeping its own slug is not a conflict.
	_, err = svc.UpdateApp(ctx, admin, "a2", forms.AppInput{Name: "Beta 2", Slug: "beta"})
	assert.NoError(t, err)

	_, err = svc.UpdateApp(ctx, admin, "missing", forms.AppInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAppCascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	databasetest.SeedApp(t, db, "a1", "Acme", "acme")
	databasetest.SeedSurvey(t, db, "s1", "a1", "feedback", true, models.Question{ID: "q1", Text: "Score"})
	require.True(t, svc.SubmitSurvey(ctx, "s1", "u1", map[string]forms.AnswerValue{"q1": forms.Single("4")}).Success)

	require.NoError(t, svc.DeleteApp(ctx, admin, "a1"))
	assert.Zero(t, countRows(t, db, &models.Survey{}, ""))
	assert.Zero(t, countRows(t, db, &models.Question{}, ""))
	assert.Zero(t, countRows(t, db, &models.Response{}, ""))
	assert.Zero(t, countRows(t, db, &models.Answer{}, ""))

	assert.ErrorIs(t, svc.DeleteApp(ctx, admin, "a1"), ErrNotFound)
	assert.Equal(t, []string{"app.delete"}, auditActions(t, db))
}
