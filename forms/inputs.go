package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vnkhanh/survey-hub/models"
)

type SignInInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required,max=200"`
}

type GoogleSignInInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

type AppInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"omitempty,slug,max=100"`
}

func (in AppInput) Normalize() AppInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	return in
}

type SurveyInput struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Slug       string          `json:"slug" validate:"omitempty,slug,max=100"`
	IsActive   bool            `json:"isActive"`
	ThemeColor string          `json:"themeColor" validate:"omitempty,color"`
	Notes      string          `json:"notes" validate:"max=5000"`
	Questions  []QuestionInput `json:"questions" validate:"max=200,dive"`
}

func (in SurveyInput) Normalize() SurveyInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ThemeColor = strings.TrimSpace(in.ThemeColor)
	in.Notes = strings.TrimSpace(in.Notes)
	for i := range in.Questions {
		in.Questions[i] = in.Questions[i].Normalize()
	}
	return in
}

type ActiveInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type QuestionInput struct {
	Text     string              `json:"text" validate:"required,max=1000"`
	Type     models.QuestionType `json:"type" validate:"required,questiontype"`
	Required bool                `json:"required"`
	Options  []string            `json:"options" validate:"max=50,unique,dive,required,max=255"`
}

var defaultRating = []string{"1", "2", "3", "4", "5"}

// Normalize trims text and options and fills the default RATING scale.
func (in QuestionInput) Normalize() QuestionInput {
	in.Text = strings.TrimSpace(in.Text)
	in.Type = models.QuestionType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	if !in.Type.HasOptions() {
		in.Options = nil
		return in
	}
	opts := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		opts = append(opts, strings.TrimSpace(o))
	}
	if in.Type == models.QuestionRating && len(opts) == 0 {
		opts = append(opts, defaultRating...)
	}
	in.Options = opts
	return in
}

func questionOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionInput)
	if (q.Type == models.QuestionSingleChoice || q.Type == models.QuestionMultipleChoice) && len(q.Options) == 0 {
		sl.ReportError(q.Options, "options", "Options", "choices", "")
	}
}

type ReorderInput struct {
	IDs []string `json:"ids" validate:"required,min=1,unique,dive,required"`
}

type UserInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=200"`
	Role     string `json:"role" validate:"required,oneof=ADMIN USER"`
}

func (in UserInput) Normalize() UserInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	return in
}

// UserUpdateInput leaves the password unchanged when it is empty.
type UserUpdateInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=8,max=200"`
	Role     string `json:"role" validate:"required,oneof=ADMIN USER"`
}

func (in UserUpdateInput) Normalize() UserUpdateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	return in
}

type SubmissionInput struct {
	UserID  string                 `json:"userId" validate:"max=255"`
	Answers map[string]AnswerValue `json:"answers" validate:"required,max=500"`
}

type ExportInput struct {
	AppID  string `json:"appId" form:"appId"`
	Format string `json:"format" form:"format" validate:"omitempty,oneof=csv xlsx"`
}

// Pagination clamps page to >= 1 and limit to 1..100, defaulting to 20.
type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (p Pagination) Clamp() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Pagination) Offset() int {
	p = p.Clamp()
	return (p.Page - 1) * p.Limit
}
