package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/database/databasetest"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{forms.Invalid("name", "is required"), http.StatusUnprocessableEntity},
		{auth.ErrNotAuthenticated, http.StatusUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrNotAdmin, http.StatusForbidden},
		{fmt.Errorf("app: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("slug: %w", services.ErrConflict), http.StatusConflict},
		{services.ErrSelfDelete, http.StatusConflict},
		{services.ErrNotReady, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			fail(c, "test", tt.err)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
		})
	}
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	h := New(nil, config.Config{}, db, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.HealthCheck(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormAnswers(t *testing.T) {
	survey := &models.Survey{Questions: []models.Question{
		{ID: "name", Type: models.QuestionText},
		{ID: "tags", Type: models.QuestionMultipleChoice},
		{ID: "pick", Type: models.QuestionSingleChoice},
		{ID: "skip", Type: models.QuestionTextarea},
	}}
	values := url.Values{
		"name":    {"  Ann "},
		"tags":    {"a"},
		"pick":    {"x", "y"},
		"skip":    {"   "},
		"userId":  {"u-1"},
		"unknown": {"z"},
	}

	got := formAnswers(survey, values)
	want := map[string]forms.AnswerValue{
		"name": forms.Single("  Ann "),
		"tags": forms.Multi("a"),
		"pick": forms.Multi("x", "y"),
	}
	assert.Empty(t, cmp.Diff(want, got, cmp.AllowUnexported(forms.AnswerValue{})))
}

type fakeGoogle struct {
	claims map[string]interface{}
	err    error
}

func (f fakeGoogle) Validate(_ context.Context, _, audience string) (*idtoken.Payload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &idtoken.Payload{Audience: audience, Claims: f.claims}, nil
}

func TestGoogleSignIn(t *testing.T) {
	db := databasetest.New(t)
	store, err := exports.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := services.New(db, store)
	user := databasetest.SeedUser(t, db, "u1", "ann", "password1", "USER")
	require.NoError(t, db.Model(&user).Update("email", "ann@example.com").Error)

	cfg := config.Config{JWTSecret: "secret", SessionTTL: time.Hour, GoogleClientID: "client-1"}

	tests := []struct {
		name   string
		google fakeGoogle
		status int
	}{
		{"linked account", fakeGoogle{claims: map[string]interface{}{"email": "Ann@Example.com", "email_verified": true}}, http.StatusOK},
		{"unverified email", fakeGoogle{claims: map[string]interface{}{"email": "ann@example.com", "email_verified": false}}, http.StatusUnauthorized},
		{"unknown account", fakeGoogle{claims: map[string]interface{}{"email": "bob@example.com", "email_verified": true}}, http.StatusUnauthorized},
		{"bad token", fakeGoogle{err: errors.New("expired")}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/google", New(svc, cfg, nil, tt.google).GoogleSignIn)

			req := httptest.NewRequest(http.MethodPost, "/google", strings.NewReader(`{"idToken":"tok"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"name":"ann"`)
				assert.NotEmpty(t, w.Result().Cookies())
			}
		})
	}
}
