package domain

import (
	"context"
	"time"
)

// RegistrationData is the validated per-registration form.
type RegistrationData struct {
	StudentName    string  `json:"studentName"`
	RollNo         string  `json:"rollNo"`
	Class          string  `json:"class"`
	Phone          string  `json:"phone"`
	Department     string  `json:"department"`
	Year           string  `json:"year"`
	Dietary        *string `json:"dietary"`
	SpecialNeeds   *string `json:"specialNeeds"`
	TermsAccepted  bool    `json:"termsAccepted"`
	ReceiveUpdates bool    `json:"receiveUpdates"`
}

// Feedback is a participant's single, overwritable rating of an event.
type Feedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Participant is a user's registration embedded in an Event. At most one per user.
type Participant struct {
	UserID           string           `json:"user"`
	RegistrationData RegistrationData `json:"registrationData"`
	CustomAnswers    []CustomAnswer   `json:"customAnswers"`
	RegisteredAt     time.Time        `json:"registeredAt"`
	Feedback         *Feedback        `json:"feedback"`
}

// ParticipantView is a participant with the user reference expanded.
type ParticipantView struct {
	Participant
	User *UserProfile `json:"userProfile"`
}

// RegistrationForm is the flat map of submitted form fields, including custom
// answers keyed "custom_<questionId>".
type RegistrationForm map[string]any

// RegistrationOutcome reports the result of a toggle.
type RegistrationOutcome struct {
	Registered  bool         `json:"registered"`
	Participant *Participant `json:"participant,omitempty"`
}

// ParticipationService is the Participation Ledger.
type ParticipationService interface {
	Register(ctx context.Context, eventID, userID string, form RegistrationForm) (*Participant, error)
	Unregister(ctx context.Context, eventID, userID string) error
	// ToggleRegistration registers an unregistered user or unregisters a registered one.
	ToggleRegistration(ctx context.Context, eventID, userID string, form RegistrationForm) (*RegistrationOutcome, error)
	SubmitFeedback(ctx context.Context, eventID, userID string, rating int, comment string) (*Feedback, error)
	ListParticipants(ctx context.Context, eventID, requesterID string) ([]ParticipantView, error)
	ListRegisteredEvents(ctx context.Context, userID string) ([]*Event, error)
	ListHistory(ctx context.Context, userID string) ([]*Event, error)
}
