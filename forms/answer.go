package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var errAnswerShape = errors.New("answer must be a string or an array of strings")

// AnswerValue is a submitted answer: either a single string or a list of
// strings from a multi-select question.
type AnswerValue struct {
	values []string
	multi  bool
}

func Single(s string) AnswerValue {
	return AnswerValue{values: []string{s}}
}

func Multi(vs ...string) AnswerValue {
	return AnswerValue{values: append([]string{}, vs...), multi: true}
}

func (a AnswerValue) IsMulti() bool { return a.multi }

// Values returns the submitted strings; a single answer is a list of one.
func (a AnswerValue) Values() []string {
	return append([]string{}, a.values...)
}

// String flattens the answer, joining lists with a comma. Commas inside the
// elements are not escaped.
func (a AnswerValue) String() string {
	return strings.Join(a.values, ",")
}

// IsBlank reports whether nothing but whitespace was submitted.
func (a AnswerValue) IsBlank() bool {
	for _, v := range a.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errAnswerShape
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Single(s)
		return nil
	case '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return errAnswerShape
		}
		*a = Multi(vs...)
		return nil
	default:
		return errAnswerShape
	}
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.multi {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	return json.Marshal(a.String())
}
