package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and delivery.
var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("not authorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrParticipationDisabled = errors.New("participation is not allowed for this event")
	ErrAlreadyRegistered     = errors.New("already registered for this event")
	ErrNotRegistered         = errors.New("you must be registered for this event")
	ErrEventFull             = errors.New("event has reached its maximum number of attendees")
	// ErrConflict reports a concurrent mutation of the same event; callers may retry.
	ErrConflict = errors.New("event was modified concurrently, please retry")
)

// FieldError names one invalid field and why it was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level problem found in one request.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			msgs = append(msgs, f.Message)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add records a field problem.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it has at least one field error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
