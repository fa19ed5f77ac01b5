package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/forms"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.GetUsers(c.Request.Context(), session(c))
	if err != nil {
		fail(c, "db.list_users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in forms.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), session(c), in)
	if err != nil {
		fail(c, "db.create_user", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in forms.UserUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.update_user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), session(c), c.Param("id")); err != nil {
		fail(c, "db.delete_user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := h.svc.ListAuditLogs(c.Request.Context(), session(c), p, c.Query("action"))
	if err != nil {
		fail(c, "db.list_audit_logs", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
