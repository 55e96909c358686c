package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	locker         domain.EventLocker
	mutator        *eventMutator
	defaultImage   string
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService creates the event aggregate service. defaultImage replaces a blank image URL.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	locker domain.EventLocker,
	defaultImage string,
	timeout time.Duration,
) domain.EventService {
	s := &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		locker:         locker,
		defaultImage:   defaultImage,
		now:            time.Now,
		contextTimeout: timeout,
	}
	s.mutator = &eventMutator{eventRepo: eventRepo, locker: locker, now: func() time.Time { return s.now() }}
	return s
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("event owner is required")
	}
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	questions, err := ResolveCustomQuestions(in.CustomQuestions, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	event := &domain.Event{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(in.Title),
		Date:               in.Date,
		Location:           strings.TrimSpace(in.Location),
		Description:        strings.TrimSpace(in.Description),
		Image:              strings.TrimSpace(in.Image),
		Category:           strings.TrimSpace(in.Category),
		MaxAttendees:       in.MaxAttendees,
		Tags:               normalizeTags(in.Tags),
		Prerequisites:      in.Prerequisites,
		ContactEmail:       strings.TrimSpace(in.ContactEmail),
		AllowParticipation: in.AllowParticipation,
		CreatedBy:          ownerID,
		CustomQuestions:    questions,
		Participants:       []domain.Participant{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if event.Image == "" {
		event.Image = s.defaultImage
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	detail := &domain.EventDetail{Event: event}
	owner, err := s.userRepo.GetByID(ctx, event.CreatedBy)
	switch {
	case err == nil:
		detail.Owner = owner.Profile()
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("get owner: %w", err)
	}

	detail.Participants, err = expandParticipants(ctx, s.userRepo, event.Participants)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	now := s.now()
	filter.After = &now
	return s.ListEvents(ctx, filter)
}

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	return s.ListEvents(ctx, domain.EventFilter{OwnerID: ownerID})
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, requesterID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.mutator.mutate(ctx, eventID, func(e *domain.Event) error {
		if e.CreatedBy != requesterID {
			return domain.ErrForbidden
		}
		if err := s.applyUpdate(e, upd); err != nil {
			return err
		}
		return validateEvent(e)
	})
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return err
	}
	defer unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != requesterID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// applyUpdate copies every present field of upd onto e.
func (s *eventService) applyUpdate(e *domain.Event, upd domain.EventUpdate) error {
	if upd.CustomQuestions.Set {
		questions, err := ResolveCustomQuestions(upd.CustomQuestions.Value, e.CustomQuestions)
		if err != nil {
			return err
		}
		e.CustomQuestions = questions
	}
	e.Title = strings.TrimSpace(upd.Title.Or(e.Title))
	e.Date = upd.Date.Or(e.Date)
	e.Location = strings.TrimSpace(upd.Location.Or(e.Location))
	e.Description = strings.TrimSpace(upd.Description.Or(e.Description))
	e.Category = strings.TrimSpace(upd.Category.Or(e.Category))
	e.MaxAttendees = upd.MaxAttendees.Or(e.MaxAttendees)
	e.Prerequisites = upd.Prerequisites.Or(e.Prerequisites)
	e.ContactEmail = strings.TrimSpace(upd.ContactEmail.Or(e.ContactEmail))
	e.AllowParticipation = upd.AllowParticipation.Or(e.AllowParticipation)
	if upd.Tags.Set {
		e.Tags = normalizeTags(upd.Tags.Value)
	}
	if upd.Image.Set {
		e.Image = strings.TrimSpace(upd.Image.Value)
		if e.Image == "" {
			e.Image = s.defaultImage
		}
	}
	return nil
}

func validateEvent(e *domain.Event) error {
	verr := &domain.ValidationError{}
	required := []struct{ field, value string }{
		{"title", e.Title},
		{"location", e.Location},
		{"description", e.Description},
		{"category", e.Category},
	}
	for _, r := range required {
		if r.value == "" {
			verr.Add(r.field, "is required")
		}
	}
	if e.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if e.MaxAttendees != nil && *e.MaxAttendees < 1 {
		verr.Add("maxAttendees", "must be at least 1")
	}
	if e.ContactEmail != "" {
		if _, err := mail.ParseAddress(e.ContactEmail); err != nil {
			verr.Add("contactEmail", "must be a valid email address")
		}
	}
	return verr.OrNil()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
