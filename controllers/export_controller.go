package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
)

type exportStatus struct {
	*models.ExportJob
	DownloadURL string `json:"downloadUrl,omitempty"`
}

func withDownload(job *models.ExportJob) exportStatus {
	st := exportStatus{ExportJob: job}
	if job.Status == models.ExportDone {
		st.DownloadURL = "/api/admin/exports/" + job.ID + "/download"
	}
	return st
}

// CreateExport queues a background export and answers 202 with the job.
func (h *Handler) CreateExport(c *gin.Context) {
	var in forms.ExportInput
	if !bindJSON(c, &in) {
		return
	}
	job, err := h.svc.CreateExport(c.Request.Context(), session(c), in)
	if err != nil {
		fail(c, "db.create_export", err)
		return
	}
	c.JSON(http.StatusAccepted, withDownload(job))
}

func (h *Handler) GetExport(c *gin.Context) {
	job, err := h.svc.GetExport(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		fail(c, "db.get_export", err)
		return
	}
	c.JSON(http.StatusOK, withDownload(job))
}

// DownloadExport streams a finished export; unfinished jobs answer 409.
func (h *Handler) DownloadExport(c *gin.Context) {
	job, rc, err := h.svc.OpenExport(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		fail(c, "export.open", err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, exports.ContentType(job.Format), rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + exports.FileName("answers", job.Format) + `"`,
	})
}
