package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the input kind of an organizer-authored custom question.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionRadio    QuestionType = "radio"
)

// AnswerShape is the stored shape of an answer, derived from the question type alone.
type AnswerShape int

const (
	// ShapeInvalid is returned for unknown question types.
	ShapeInvalid AnswerShape = iota
	ShapeFreeText
	ShapeSingleChoice
	ShapeMultiChoice
)

// Shape maps every question type to its answer shape.
func (t QuestionType) Shape() AnswerShape {
	switch t {
	case QuestionText, QuestionTextarea:
		return ShapeFreeText
	case QuestionSelect, QuestionRadio:
		return ShapeSingleChoice
	case QuestionCheckbox:
		return ShapeMultiChoice
	default:
		return ShapeInvalid
	}
}

// Valid reports whether t is one of the five known kinds.
func (t QuestionType) Valid() bool {
	return t.Shape() != ShapeInvalid
}

// RequiresOptions reports whether questions of this type must declare options.
func (t QuestionType) RequiresOptions() bool {
	s := t.Shape()
	return s == ShapeSingleChoice || s == ShapeMultiChoice
}

// CustomQuestion is an extra registration form field owned by an Event.
// Options is empty for free-text types.
type CustomQuestion struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options"`
}

// HasOption reports whether v is one of the declared options.
func (q CustomQuestion) HasOption(v string) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

// CustomQuestionInput is an organizer-submitted question definition before resolution.
// ID is optional and only honored when it matches a question already on the event.
type CustomQuestionInput struct {
	ID       string   `json:"id,omitempty"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
}

// Answer is a custom-question answer: a single string, or a list of strings for
// multi-choice questions. It serializes as a JSON string or array accordingly.
type Answer struct {
	Value  string
	Values []string
	Multi  bool
}

// TextAnswer returns a scalar answer.
func TextAnswer(v string) Answer { return Answer{Value: v} }

// ListAnswer returns a list answer.
func ListAnswer(vs ...string) Answer { return Answer{Values: vs, Multi: true} }

// MarshalJSON implements json.Marshaler.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		vs := a.Values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = TextAnswer(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("answer must be a string or a list of strings: %w", err)
	}
	*a = ListAnswer(vs...)
	return nil
}

// CustomAnswer is a stored answer to one custom question, with a snapshot of the question text.
type CustomAnswer struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     Answer `json:"answer"`
}
