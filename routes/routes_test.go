package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/controllers"
	"github.com/vnkhanh/survey-hub/database/databasetest"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/services"
)

type env struct {
	r  *gin.Engine
	db *gorm.DB
}

func newEnv(t *testing.T, tweak ...func(*config.Config)) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.New(t)
	store, err := exports.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := services.New(db, store)
	t.Cleanup(svc.Wait)

	cfg := config.Config{
		AppName:          "Survey Hub",
		JWTSecret:        "secret",
		SessionTTL:       time.Hour,
		CORSOrigins:      "http://localhost:3000",
		SubmitRatePerMin: 600,
		SubmitBurst:      100,
		LoginRatePerMin:  600,
		LoginBurst:       100,
	}
	for _, f := range tweak {
		f(&cfg)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	lim := NewLimiters(cfg)
	t.Cleanup(lim.Stop)

	r := gin.New()
	require.NoError(t, SetupRoutes(r, cfg, svc, controllers.New(svc, cfg, sqlDB, nil), lim))

	databasetest.SeedUser(t, db, "admin-1", "root", "password1", "ADMIN")
	databasetest.SeedUser(t, db, "user-1", "member", "password2", "USER")
	return &env{r: r, db: db}
}

func (e *env) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) signIn(t *testing.T, name, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/sign-in", map[string]string{"name": name, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndMeta(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["db"])

	w = e.do(t, http.MethodGet, "/api/meta", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Survey Hub", decode(t, w)["appName"])
	assert.Equal(t, false, decode(t, w)["googleSignIn"])

	w = e.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "survey_hub_http_requests_total")
}

func TestSignIn(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/sign-in", map[string]string{"name": "root", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid name or password", decode(t, w)["error"])

	w = e.do(t, http.MethodPost, "/api/auth/sign-in", map[string]string{"name": ""}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "name")

	// form posts work too and set the session cookie
	w = e.postForm(t, "/api/auth/sign-in", url.Values{"name": {"root"}, "password": {"password1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	e.r.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ADMIN", decode(t, me)["role"])

	w = e.do(t, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOutClearsCookie(t *testing.T) {
	e := newEnv(t)
	token := e.signIn(t, "member", "password2")

	w := e.do(t, http.MethodPost, "/api/auth/sign-out", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestGoogleSignInDisabled(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/auth/google", map[string]string{"idToken": "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAccess(t *testing.T) {
	e := newEnv(t)
	member := e.signIn(t, "member", "password2")
	admin := e.signIn(t, "root", "password1")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"anonymous read", http.MethodGet, "/api/admin/apps", "", http.StatusUnauthorized},
		{"member read", http.MethodGet, "/api/admin/apps", member, http.StatusOK},
		{"member write", http.MethodPost, "/api/admin/apps", member, http.StatusForbidden},
		{"member users", http.MethodGet, "/api/admin/users", member, http.StatusForbidden},
		{"admin users", http.MethodGet, "/api/admin/users", admin, http.StatusOK},
		{"admin audit", http.MethodGet, "/api/admin/audit-logs", admin, http.StatusOK},
		{"unknown app", http.MethodGet, "/api/admin/apps/nope", admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.method, tt.path, map[string]string{"name": "Acme"}, tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestSurveyLifecycle(t *testing.T) {
	e := newEnv(t)
	admin := e.signIn(t, "root", "password1")

	w := e.do(t, http.MethodPost, "/api/admin/apps", map[string]string{"name": "Acme Corp"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode(t, w)
	assert.Equal(t, "acme-corp", app["slug"])
	appID := app["id"].(string)

	w = e.do(t, http.MethodPost, "/api/admin/apps", map[string]string{"name": "Other", "slug": "acme-corp"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, "/api/admin/apps/"+appID+"/surveys", map[string]any{
		"title": "Feedback",
		"questions": []map[string]any{
			{"text": "Name", "type": "TEXT", "required": true},
			{"text": "Colours", "type": "MULTIPLE_CHOICE", "options": []string{"red", "blue"}},
		},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	surveyID := decode(t, w)["id"].(string)

	// inactive surveys are hidden from the public
	w = e.do(t, http.MethodGet, "/api/public/apps/acme-corp/surveys/feedback", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPatch, "/api/admin/surveys/"+surveyID+"/active", map[string]bool{"isActive": true}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/public/apps/acme-corp/surveys/feedback", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	questions := decode(t, w)["questions"].([]any)
	require.Len(t, questions, 2)
	nameQ := questions[0].(map[string]any)["id"].(string)
	colourQ := questions[1].(map[string]any)["id"].(string)

	w = e.do(t, http.MethodPost, "/api/public/surveys/"+surveyID+"/submissions", map[string]any{
		"userId":  "u-42",
		"answers": map[string]any{nameQ: "Ann", colourQ: []string{"red", "blue"}},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = e.do(t, http.MethodPost, "/api/public/surveys/"+surveyID+"/submissions", map[string]any{
		"answers": map[string]any{colourQ: "green"},
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, `"Name" is required.`, decode(t, w)["error"])

	w = e.do(t, http.MethodGet, "/api/admin/surveys/"+surveyID+"/responses", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = e.do(t, http.MethodGet, "/api/admin/answers/export?appId="+appID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), `Acme Corp,Feedback,`)
	assert.Contains(t, w.Body.String(), `,"red,blue"`)

	w = e.do(t, http.MethodGet, "/api/admin/answers/export?format=pdf", nil, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodDelete, "/api/admin/apps/"+appID, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, count(t, e.db, &models.Response{}))
}

func TestMalformedBody(t *testing.T) {
	e := newEnv(t)
	admin := e.signIn(t, "root", "password1")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/apps", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func seedFormSurvey(t *testing.T, db *gorm.DB, active bool) models.Survey {
	t.Helper()
	databasetest.SeedApp(t, db, "a1", "Acme", "acme")
	return databasetest.SeedSurvey(t, db, "s1", "a1", "feedback", active,
		models.Question{ID: "q1", Text: "Name", Required: true},
		models.Question{ID: "q2", Text: "Pick", Type: models.QuestionSingleChoice, Options: datatypes.JSONSlice[string]{"yes", "no"}},
	)
}

func TestPublicForm(t *testing.T) {
	e := newEnv(t)
	seedFormSurvey(t, e.db, true)

	w := e.do(t, http.MethodGet, "/acme/feedback/form?userId=u-7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Survey feedback")
	assert.Contains(t, w.Body.String(), `name="userId" value="u-7"`)
	assert.Contains(t, w.Body.String(), "Survey Hub")

	w = e.postForm(t, "/acme/feedback/form", url.Values{"q2": {"maybe"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "is required.")

	w = e.postForm(t, "/acme/feedback/form", url.Values{"userId": {"u-7"}, "q1": {"Ann"}, "q2": {"yes"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Thank you!")

	var answers []models.Answer
	require.NoError(t, e.db.Order("question_id").Find(&answers).Error)
	require.Len(t, answers, 2)
	assert.Equal(t, "Ann", answers[0].Value)
	assert.Equal(t, "yes", answers[1].Value)
}

func TestPublicFormNotFound(t *testing.T) {
	e := newEnv(t)
	seedFormSurvey(t, e.db, false)

	for _, path := range []string{"/acme/feedback/form", "/acme/missing/form", "/nope/feedback/form"} {
		w := e.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "Survey not found", path)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	e := newEnv(t, func(cfg *config.Config) {
		cfg.SubmitRatePerMin = 1
		cfg.SubmitBurst = 1
	})
	seedFormSurvey(t, e.db, true)

	body := map[string]any{"answers": map[string]any{"q1": "Ann"}}
	w := e.do(t, http.MethodPost, "/api/public/surveys/s1/submissions", body, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = e.do(t, http.MethodPost, "/api/public/surveys/s1/submissions", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestExportJobDownload(t *testing.T) {
	e := newEnv(t)
	admin := e.signIn(t, "root", "password1")
	seedFormSurvey(t, e.db, true)

	w := e.do(t, http.MethodPost, "/api/admin/exports", map[string]string{"appId": "a1", "format": "csv"}, admin)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	require.Eventually(t, func() bool {
		w := e.do(t, http.MethodGet, "/api/admin/exports/"+id, nil, admin)
		return decode(t, w)["status"] == models.ExportDone
	}, 5*time.Second, 20*time.Millisecond)

	w = e.do(t, http.MethodGet, "/api/admin/exports/"+id, nil, admin)
	assert.Equal(t, "/api/admin/exports/"+id+"/download", decode(t, w)["downloadUrl"])

	w = e.do(t, http.MethodGet, "/api/admin/exports/"+id+"/download", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "App,Survey,Response ID"))
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
