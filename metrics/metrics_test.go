package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "418"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissions.WithLabelValues("success"))
	RecordSubmission("success")
	assert.Equal(t, 1.0, testutil.ToFloat64(submissions.WithLabelValues("success"))-before)
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordExport("done")
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `survey_export_jobs_total{status="done"}`)
}
