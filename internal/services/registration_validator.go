package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"campusevents/internal/domain"
)

// CustomAnswerKeyPrefix prefixes a question id to form the form key of its answer.
const CustomAnswerKeyPrefix = "custom_"

var requiredRegistrationFields = []string{"studentName", "rollNo", "class", "phone", "department", "year"}

// ValidateRegistration checks a submitted registration form against the event's custom
// question schema. It is pure: nothing is stored. Answer shape is decided by each
// question's declared type, never by what the client sent; unanswered custom questions
// are omitted rather than stored as empty strings.
func ValidateRegistration(event *domain.Event, form domain.RegistrationForm) (domain.RegistrationData, []domain.CustomAnswer, error) {
	verr := &domain.ValidationError{}

	values := make(map[string]string, len(requiredRegistrationFields))
	for _, field := range requiredRegistrationFields {
		v, ok := scalarString(form[field])
		if !ok || v == "" {
			verr.Add(field, "is required")
			continue
		}
		values[field] = v
	}
	if !truthy(form["termsAccepted"]) {
		verr.Add("termsAccepted", "you must accept the terms and conditions")
	}

	answers := make([]domain.CustomAnswer, 0, len(event.CustomQuestions))
	for _, q := range event.CustomQuestions {
		raw, present := form[CustomAnswerKeyPrefix+q.ID]
		if !present || raw == nil {
			continue
		}
		answer, ok, err := coerceAnswer(q, raw)
		if err != nil {
			verr.Add(CustomAnswerKeyPrefix+q.ID, err.Error())
			continue
		}
		if !ok {
			continue
		}
		answers = append(answers, domain.CustomAnswer{
			QuestionID: q.ID,
			Question:   q.Question,
			Answer:     answer,
		})
	}

	if err := verr.OrNil(); err != nil {
		return domain.RegistrationData{}, nil, err
	}

	data := domain.RegistrationData{
		StudentName:    values["studentName"],
		RollNo:         values["rollNo"],
		Class:          values["class"],
		Phone:          values["phone"],
		Department:     values["department"],
		Year:           values["year"],
		Dietary:        optionalString(form["dietary"]),
		SpecialNeeds:   optionalString(form["specialNeeds"]),
		TermsAccepted:  true,
		ReceiveUpdates: truthy(form["receiveUpdates"]),
	}
	return data, answers, nil
}

// coerceAnswer shapes raw according to q's type. ok is false when the answer is empty.
func coerceAnswer(q domain.CustomQuestion, raw any) (domain.Answer, bool, error) {
	switch q.Type.Shape() {
	case domain.ShapeMultiChoice:
		vs, err := stringList(raw)
		if err != nil {
			return domain.Answer{}, false, err
		}
		if len(vs) == 0 {
			return domain.Answer{}, false, nil
		}
		for _, v := range vs {
			if !q.HasOption(v) {
				return domain.Answer{}, false, fmt.Errorf("%q is not one of the options", v)
			}
		}
		return domain.ListAnswer(vs...), true, nil
	case domain.ShapeSingleChoice:
		v, ok := scalarString(raw)
		if !ok {
			return domain.Answer{}, false, fmt.Errorf("expects a single value")
		}
		if v == "" {
			return domain.Answer{}, false, nil
		}
		if !q.HasOption(v) {
			return domain.Answer{}, false, fmt.Errorf("%q is not one of the options", v)
		}
		return domain.TextAnswer(v), true, nil
	case domain.ShapeFreeText:
		v, ok := scalarString(raw)
		if !ok {
			return domain.Answer{}, false, fmt.Errorf("expects a single value")
		}
		if v == "" {
			return domain.Answer{}, false, nil
		}
		return domain.TextAnswer(v), true, nil
	default:
		return domain.Answer{}, false, fmt.Errorf("question has unsupported type %q", q.Type)
	}
}

// scalarString converts a decoded JSON scalar to a trimmed string.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

// stringList accepts a single scalar or a list of scalars. Empty and repeated entries are
// dropped, keeping submission order.
func stringList(v any) ([]string, error) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		items = make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
	default:
		items = []any{t}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := scalarString(it)
		if !ok {
			return nil, fmt.Errorf("expects text values")
		}
		out = append(out, s)
	}
	return normalizeOptions(out), nil
}

func optionalString(v any) *string {
	s, ok := scalarString(v)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// truthy accepts a JSON boolean or the string forms HTML checkboxes submit.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "yes", "1":
			return true
		}
	}
	return false
}
