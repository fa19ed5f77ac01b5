package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/services"
	"github.com/vnkhanh/survey-hub/utils"
)

// SignIn accepts a JSON or form body. A wrong name or password answers
// 401 with {error} so a login form can show it as is.
func (h *Handler) SignIn(c *gin.Context) {
	var in forms.SignInInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, "request.parse_body", err)
		return
	}
	if err := forms.Validate(in).Err(); err != nil {
		fail(c, "auth.sign_in", err)
		return
	}

	sess, err := h.svc.SignIn(c.Request.Context(), in.Name, in.Password, c.ClientIP())
	if err != nil {
		fail(c, "auth.sign_in", err)
		return
	}
	h.issue(c, sess)
}

// GoogleSignIn trades a verified Google ID token for a session of the user
// owning its email.
func (h *Handler) GoogleSignIn(c *gin.Context) {
	if h.google == nil || h.cfg.GoogleClientID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}

	var in forms.GoogleSignInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request.parse_body", err)
		return
	}
	if err := forms.Validate(in).Err(); err != nil {
		fail(c, "auth.google", err)
		return
	}

	payload, err := h.google.Validate(c.Request.Context(), in.IDToken, h.cfg.GoogleClientID)
	if err != nil {
		log.Debugf("auth.google.validate: %s", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Google token"})
		return
	}
	email, _ := payload.Claims["email"].(string)
	if verified, _ := payload.Claims["email_verified"].(bool); !verified || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account email is not verified"})
		return
	}

	sess, err := h.svc.SignInWithEmail(c.Request.Context(), email, c.ClientIP())
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no account is linked to this Google address"})
		return
	}
	if err != nil {
		fail(c, "auth.google", err)
		return
	}
	h.issue(c, sess)
}

func (h *Handler) issue(c *gin.Context, sess *auth.Session) {
	token, expires, err := utils.GenerateToken(h.cfg.JWTSecret, sess.UserID, sess.Name, string(sess.Role), h.cfg.SessionTTL)
	if err != nil {
		fail(c, "auth.generate_token", err)
		return
	}
	sess.ExpiresAt = expires
	middleware.SetSessionCookie(c, token, expires, h.cfg.CookieSecure)
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expires, "user": sess})
}

// SignOut clears the cookie. Signing out without a session is not an error.
func (h *Handler) SignOut(c *gin.Context) {
	if sess := session(c); sess != nil {
		if err := h.svc.SignOut(c.Request.Context(), sess); err != nil {
			log.WithError(err).Warn("could not record sign out")
		}
	}
	middleware.ClearSessionCookie(c, h.cfg.CookieSecure)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	sess := session(c)
	if err := auth.EnsureAuthenticated(sess); err != nil {
		fail(c, "auth.me", err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Meta is the public branding and feature set the UI needs before sign-in.
func (h *Handler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"appName":        h.cfg.AppName,
		"googleSignIn":   h.google != nil && h.cfg.GoogleClientID != "",
		"googleClientId": h.cfg.GoogleClientID,
	})
}
