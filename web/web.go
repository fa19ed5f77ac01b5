// Package web holds the server-rendered pages of the public survey form.
package web

import (
	"embed"
	"html/template"
	"net/url"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

// DefaultTheme colours surveys that do not set their own.
const DefaultTheme = "#1e3a8a"

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses the embedded pages. They are addressed by file name,
// e.g. "form.tmpl".
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.tmpl")
}

type Page struct {
	AppName string
	Title   string
	Theme   string
}

func (p Page) ThemeColor() string {
	if p.Theme == "" {
		return DefaultTheme
	}
	return p.Theme
}

func (p Page) TextColor() string {
	return utils.ContrastColor(p.ThemeColor())
}

// FormPage renders a survey, optionally re-filled with a rejected submission.
type FormPage struct {
	Page
	Survey *models.Survey
	Error  string
	Values url.Values
}

func NewFormPage(appName string, survey *models.Survey, values url.Values, errMsg string) FormPage {
	return FormPage{
		Page:   Page{AppName: appName, Title: survey.Title, Theme: survey.ThemeColor},
		Survey: survey,
		Error:  errMsg,
		Values: values,
	}
}

func (p FormPage) Value(questionID string) string {
	return p.Values.Get(questionID)
}

func (p FormPage) Checked(questionID, option string) bool {
	for _, v := range p.Values[questionID] {
		if v == option {
			return true
		}
	}
	return false
}
