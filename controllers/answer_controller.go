package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/forms"
)

// GetAnswers lists the flattened answer rows, optionally for one app.
func (h *Handler) GetAnswers(c *gin.Context) {
	rows, err := h.svc.GetAnswers(c.Request.Context(), session(c), c.Query("appId"))
	if err != nil {
		fail(c, "db.get_answers", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportAnswers downloads the answer rows as CSV or XLSX in one request.
// The file is rendered in memory first so failures still answer with JSON.
func (h *Handler) ExportAnswers(c *gin.Context) {
	var in forms.ExportInput
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, "request.parse_query", err)
		return
	}
	if err := forms.Validate(in).Err(); err != nil {
		fail(c, "export.validate", err)
		return
	}
	if in.Format == "" {
		in.Format = exports.FormatCSV
	}

	rows, err := h.svc.GetAnswers(c.Request.Context(), session(c), in.AppID)
	if err != nil {
		fail(c, "db.get_answers", err)
		return
	}

	var buf bytes.Buffer
	if err := exports.Write(&buf, in.Format, rows); err != nil {
		fail(c, "export.write", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exports.FileName("answers", in.Format)+`"`)
	c.Data(http.StatusOK, exports.ContentType(in.Format), buf.Bytes())
}
