package domain

import (
	"context"
	"time"
)

// Event is an organizer-owned event. Participants and CustomQuestions are embedded
// and have no life outside it.
// swagger:model Event
type Event struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Date               time.Time        `json:"date"`
	Location           string           `json:"location"`
	Description        string           `json:"description"`
	Image              string           `json:"image"`
	Category           string           `json:"category"`
	MaxAttendees       *int             `json:"maxAttendees"`
	Tags               []string         `json:"tags"`
	Prerequisites      string           `json:"prerequisites"`
	ContactEmail       string           `json:"contactEmail"`
	AllowParticipation bool             `json:"allowParticipation"`
	CreatedBy          string           `json:"createdBy"`
	CustomQuestions    []CustomQuestion `json:"customQuestions"`
	Participants       []Participant    `json:"participants"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`

	// Version is the stored revision used for conditional saves.
	Version int64 `json:"-"`
}

// ParticipantIndex returns the index of userID's participant record, or -1.
func (e *Event) ParticipantIndex(userID string) int {
	for i := range e.Participants {
		if e.Participants[i].UserID == userID {
			return i
		}
	}
	return -1
}

// IsRegistered reports whether userID has a participant record.
func (e *Event) IsRegistered(userID string) bool {
	return e.ParticipantIndex(userID) >= 0
}

// IsFull reports whether the attendee cap, when set, has been reached.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && len(e.Participants) >= *e.MaxAttendees
}

// Question returns the custom question with the given id.
func (e *Event) Question(id string) (CustomQuestion, bool) {
	for _, q := range e.CustomQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return CustomQuestion{}, false
}

// EventInput carries the organizer-supplied fields of a new event.
type EventInput struct {
	Title              string
	Date               time.Time
	Location           string
	Description        string
	Image              string
	Category           string
	MaxAttendees       *int
	Tags               []string
	Prerequisites      string
	ContactEmail       string
	AllowParticipation bool
	CustomQuestions    []CustomQuestionInput
}

// EventUpdate is a partial update. Only fields with Set=true are applied, so an explicit
// empty string or zero overrides the stored value.
type EventUpdate struct {
	Title              Optional[string]
	Date               Optional[time.Time]
	Location           Optional[string]
	Description        Optional[string]
	Image              Optional[string]
	Category           Optional[string]
	MaxAttendees       Optional[*int]
	Tags               Optional[[]string]
	Prerequisites      Optional[string]
	ContactEmail       Optional[string]
	AllowParticipation Optional[bool]
	CustomQuestions    Optional[[]CustomQuestionInput]
}

// EventFilter narrows event listings. Zero values disable each criterion.
type EventFilter struct {
	Category string
	// Search matches title, description or location case-insensitively.
	Search   string
	OwnerID  string
	After    *time.Time
	Before   *time.Time
	// ParticipantID restricts to events the user has a participant record on.
	ParticipantID string
}

// EventDetail is an event with its owner and participant users expanded.
type EventDetail struct {
	*Event
	Owner        *UserProfile      `json:"owner"`
	Participants []ParticipantView `json:"participants"`
}

// EventRepository is the persistence collaborator for event documents.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns matching events sorted ascending by date.
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	// Save replaces the stored document if its version still equals event.Version,
	// then bumps event.Version. A stale version yields ErrConflict.
	Save(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventLocker serializes mutations per event id. The returned func releases the lock.
type EventLocker interface {
	Lock(ctx context.Context, eventID string) (unlock func(), err error)
}

// EventService defines the Event Aggregate operations.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID string, in EventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*EventDetail, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListUpcoming(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, requesterID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, requesterID string) error
}
