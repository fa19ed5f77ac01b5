package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/utils"
)

const (
	CtxSession    = "session"
	SessionCookie = "session"
)

// SessionLoader re-reads the account behind a token.
type SessionLoader interface {
	LoadSession(ctx context.Context, userID, ip string) (*auth.Session, error)
}

// Authenticate reads "Authorization: Bearer <token>" or the session cookie and
// stores the resolved session in the context. Requests without a valid token
// continue anonymously; handlers decide what that means.
func Authenticate(secret string, loader SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw, _ = c.Cookie(SessionCookie)
		}
		if raw == "" {
			c.Next()
			return
		}

		claims, err := utils.VerifyToken(secret, raw)
		if err != nil {
			log.Debugf("rejecting session token: %v", err)
			c.Next()
			return
		}

		sess, err := loader.LoadSession(c.Request.Context(), claims.UserID, c.ClientIP())
		switch {
		case errors.Is(err, auth.ErrNotAuthenticated):
		case err != nil:
			log.WithFields(log.Fields{"code": "auth.load_session"}).WithError(err).Error("could not load session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		default:
			if claims.ExpiresAt != nil {
				sess.ExpiresAt = claims.ExpiresAt.Time
			}
			c.Set(CtxSession, sess)
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Session returns the caller's session, or nil for anonymous requests.
func Session(c *gin.Context) *auth.Session {
	if v, ok := c.Get(CtxSession); ok {
		if sess, ok := v.(*auth.Session); ok {
			return sess
		}
	}
	return nil
}

// RequireAuth stops anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.EnsureAuthenticated(Session(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// RequireAdmin stops requests whose session is not an ADMIN.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := auth.EnsureAdmin(Session(c)); {
		case errors.Is(err, auth.ErrNotAuthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case err != nil:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.Next()
		}
	}
}

// SetSessionCookie stores the token in an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, token string, expires time.Time, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(time.Until(expires).Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
