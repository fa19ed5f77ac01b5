package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/forms"
)

func (h *Handler) ListApps(c *gin.Context) {
	apps, err := h.svc.ListApps(c.Request.Context(), session(c))
	if err != nil {
		fail(c, "db.list_apps", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *Handler) GetApp(c *gin.Context) {
	app, err := h.svc.GetApp(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		fail(c, "db.get_app", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) CreateApp(c *gin.Context) {
	var in forms.AppInput
	if !bindJSON(c, &in) {
		return
	}
	app, err := h.svc.CreateApp(c.Request.Context(), session(c), in)
	if err != nil {
		fail(c, "db.create_app", err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *Handler) UpdateApp(c *gin.Context) {
	var in forms.AppInput
	if !bindJSON(c, &in) {
		return
	}
	app, err := h.svc.UpdateApp(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.update_app", err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) DeleteApp(c *gin.Context) {
	if err := h.svc.DeleteApp(c.Request.Context(), session(c), c.Param("id")); err != nil {
		fail(c, "db.delete_app", err)
		return
	}
	c.Status(http.StatusNoContent)
}
