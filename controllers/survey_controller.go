package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/forms"
)

func (h *Handler) ListSurveys(c *gin.Context) {
	surveys, err := h.svc.ListSurveys(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		fail(c, "db.list_surveys", err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

func (h *Handler) GetSurvey(c *gin.Context) {
	survey, err := h.svc.GetSurvey(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		fail(c, "db.get_survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// CreateSurvey adds a survey to the app in the path, optionally with its
// first questions.
func (h *Handler) CreateSurvey(c *gin.Context) {
	var in forms.SurveyInput
	if !bindJSON(c, &in) {
		return
	}
	survey, err := h.svc.CreateSurvey(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.create_survey", err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}

func (h *Handler) UpdateSurvey(c *gin.Context) {
	var in forms.SurveyInput
	if !bindJSON(c, &in) {
		return
	}
	survey, err := h.svc.UpdateSurvey(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.update_survey", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

func (h *Handler) SetSurveyActive(c *gin.Context) {
	var in forms.ActiveInput
	if !bindJSON(c, &in) {
		return
	}
	if err := forms.Validate(in).Err(); err != nil {
		fail(c, "survey.set_active", err)
		return
	}
	survey, err := h.svc.SetSurveyActive(c.Request.Context(), session(c), c.Param("id"), *in.IsActive)
	if err != nil {
		fail(c, "db.set_survey_active", err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

func (h *Handler) DeleteSurvey(c *gin.Context) {
	if err := h.svc.DeleteSurvey(c.Request.Context(), session(c), c.Param("id")); err != nil {
		fail(c, "db.delete_survey", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListResponses(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := h.svc.ListResponses(c.Request.Context(), session(c), c.Param("id"), p)
	if err != nil {
		fail(c, "db.list_responses", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
