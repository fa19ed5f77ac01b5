package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/forms"
)

func (h *Handler) AddQuestion(c *gin.Context) {
	var in forms.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := h.svc.AddQuestion(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.add_question", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	var in forms.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := h.svc.UpdateQuestion(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.update_question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	if err := h.svc.DeleteQuestion(c.Request.Context(), session(c), c.Param("id")); err != nil {
		fail(c, "db.delete_question", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderQuestions takes {"ids": [...]} listing every question of the survey
// in its new order.
func (h *Handler) ReorderQuestions(c *gin.Context) {
	var in forms.ReorderInput
	if !bindJSON(c, &in) {
		return
	}
	questions, err := h.svc.ReorderQuestions(c.Request.Context(), session(c), c.Param("id"), in)
	if err != nil {
		fail(c, "db.reorder_questions", err)
		return
	}
	c.JSON(http.StatusOK, questions)
}
