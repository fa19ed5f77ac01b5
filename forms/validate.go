// Package forms validates request payloads at the boundary. Validate never
// panics on user input; it yields either the parsed data or the field errors.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

// Result is either Valid(data) or Invalid(errors).
type Result[T any] struct {
	data T
	errs FieldErrors
}

// Valid returns the parsed data and true, or the zero value and false.
func (r Result[T]) Valid() (T, bool) {
	if len(r.errs) > 0 {
		var zero T
		return zero, false
	}
	return r.data, true
}

func (r Result[T]) Errors() FieldErrors {
	return r.errs
}

// Err is Errors as an error, nil when valid.
func (r Result[T]) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs
}

// FieldErrors maps a json field path to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Validate checks in against its validate tags.
func Validate[T any](in T) Result[T] {
	err := validate().Struct(in)
	if err == nil {
		return Result[T]{data: in}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result[T]{errs: FieldErrors{"": err.Error()}}
	}
	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		errs[fieldPath(fe)] = message(fe)
	}
	return Result[T]{errs: errs}
}

// Invalid builds a single field error, for checks that need the database.
func Invalid(field, msg string) FieldErrors {
	return FieldErrors{field: msg}
}

var (
	once sync.Once
	v    *validator.Validate
)

var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validate() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		must(v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return reSlug.MatchString(fl.Field().String())
		}))
		must(v.RegisterValidation("questiontype", func(fl validator.FieldLevel) bool {
			return models.QuestionType(fl.Field().String()).Valid()
		}))
		must(v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
			return utils.IsValidHex(fl.Field().String())
		}))
		v.RegisterStructValidation(questionOptions, QuestionInput{})
	})
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// fieldPath drops the root struct name: "SurveyInput.questions[0].text" -> "questions[0].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at most %s items", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at least %s items", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "slug":
		return "may only contain lowercase letters, digits and dashes"
	case "questiontype":
		return "must be one of: " + joinTypes()
	case "color":
		return "must be a hex colour like #1e3a8a"
	case "choices":
		return "choice questions need at least one option"
	case "unique":
		return "must not contain duplicates"
	default:
		return "is invalid"
	}
}

func joinTypes() string {
	names := make([]string, len(models.QuestionTypes))
	for i, t := range models.QuestionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
