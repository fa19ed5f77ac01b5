// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/services"
)

// TokenValidator checks Google ID tokens; *idtoken.Validator satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Pinger reports whether the database is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	svc    *services.Service
	cfg    config.Config
	db     Pinger
	google TokenValidator // nil disables Google sign-in
}

func New(svc *services.Service, cfg config.Config, db Pinger, google TokenValidator) *Handler {
	return &Handler{svc: svc, cfg: cfg, db: db, google: google}
}

// fail maps service errors to a status and a JSON {error} body. Anything
// unrecognised is logged under code and hidden behind a 500.
func fail(c *gin.Context, code string, err error) {
	var fields forms.FieldErrors
	switch {
	case errors.As(err, &fields):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid input", "fields": fields})
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrSelfDemote),
		errors.Is(err, services.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Errorf("%s: %s", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
	}
}

// badRequest answers bodies or queries that could not be decoded at all.
func badRequest(c *gin.Context, code string, err error) {
	log.Debugf("%s: %s", code, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
}

func session(c *gin.Context) *auth.Session {
	return middleware.Session(c)
}

func pagination(c *gin.Context) (forms.Pagination, bool) {
	var p forms.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, "request.parse_query", err)
		return p, false
	}
	return p.Clamp(), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "request.parse_body", err)
		return false
	}
	return true
}
