package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/web"
)

func (h *Handler) PublicApp(c *gin.Context) {
	app, err := h.svc.GetAppBySlug(c.Request.Context(), c.Param("appSlug"))
	if err != nil {
		fail(c, "db.get_app", err)
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) PublicSurvey(c *gin.Context) {
	survey, err := h.svc.GetPublicSurvey(c.Request.Context(), c.Param("appSlug"), c.Param("surveySlug"))
	if err != nil {
		fail(c, "db.get_survey", err)
		return
	}
	if survey == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "survey not found"})
		return
	}
	c.JSON(http.StatusOK, survey)
}

// Submit records a JSON submission. Rejections come back as 422 {error}.
func (h *Handler) Submit(c *gin.Context) {
	var in forms.SubmissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request.parse_body", err)
		return
	}
	if err := forms.Validate(in).Err(); err != nil {
		fail(c, "submission.validate", err)
		return
	}

	res := h.svc.SubmitSurvey(c.Request.Context(), c.Param("surveyId"), in.UserID, in.Answers)
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ShowForm renders the public HTML form. Query parameters pre-fill fields,
// e.g. ?userId=42.
func (h *Handler) ShowForm(c *gin.Context) {
	survey, ok := h.formSurvey(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "form.tmpl", web.NewFormPage(h.cfg.AppName, survey, c.Request.URL.Query(), ""))
}

// PostForm submits the HTML form. Every field named after a question id is an
// answer; repeated fields make a list.
func (h *Handler) PostForm(c *gin.Context) {
	survey, ok := h.formSurvey(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		badRequest(c, "request.parse_form", err)
		return
	}
	values := c.Request.PostForm

	res := h.svc.SubmitSurvey(c.Request.Context(), survey.ID, values.Get("userId"), formAnswers(survey, values))
	if !res.Success {
		c.HTML(http.StatusUnprocessableEntity, "form.tmpl", web.NewFormPage(h.cfg.AppName, survey, values, res.Error))
		return
	}
	c.HTML(http.StatusOK, "thanks.tmpl", web.Page{AppName: h.cfg.AppName, Title: survey.Title, Theme: survey.ThemeColor})
}

func (h *Handler) formSurvey(c *gin.Context) (*models.Survey, bool) {
	survey, err := h.svc.GetPublicSurvey(c.Request.Context(), c.Param("appSlug"), c.Param("surveySlug"))
	if err != nil {
		fail(c, "db.get_survey", err)
		return nil, false
	}
	if survey == nil {
		c.HTML(http.StatusNotFound, "notfound.tmpl", web.Page{AppName: h.cfg.AppName})
		return nil, false
	}
	return survey, true
}

func formAnswers(survey *models.Survey, values url.Values) map[string]forms.AnswerValue {
	answers := make(map[string]forms.AnswerValue)
	for _, q := range survey.Questions {
		var picked []string
		for _, v := range values[q.ID] {
			if strings.TrimSpace(v) != "" {
				picked = append(picked, v)
			}
		}
		switch {
		case len(picked) == 0:
		case q.Type == models.QuestionMultipleChoice || len(picked) > 1:
			answers[q.ID] = forms.Multi(picked...)
		default:
			answers[q.ID] = forms.Single(picked[0])
		}
	}
	return answers
}
