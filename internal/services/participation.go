package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
)

const (
	minRating = 1
	maxRating = 5
)

type participationService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	mutator        *eventMutator
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewParticipationService creates the participation ledger. Every mutation of an event's
// participant list runs under locker for that event id. emailService may be nil.
func NewParticipationService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	locker domain.EventLocker,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipationService {
	s := &participationService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
	s.mutator = &eventMutator{eventRepo: eventRepo, locker: locker, now: s.clock}
	return s
}

func (s *participationService) clock() time.Time { return s.now() }

func (s *participationService) Register(ctx context.Context, eventID, userID string, form domain.RegistrationForm) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var added *domain.Participant
	event, err := s.mutator.mutate(ctx, eventID, func(e *domain.Event) error {
		if !e.AllowParticipation {
			return domain.ErrParticipationDisabled
		}
		if e.IsRegistered(userID) {
			return domain.ErrAlreadyRegistered
		}
		p, aerr := s.admit(e, userID, form)
		added = p
		return aerr
	})
	if err != nil {
		return nil, err
	}
	s.sendConfirmation(ctx, user, event, added)
	return added, nil
}

func (s *participationService) Unregister(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.mutator.mutate(ctx, eventID, func(e *domain.Event) error {
		if !removeParticipant(e, userID) {
			return domain.ErrNotRegistered
		}
		return nil
	})
	return err
}

func (s *participationService) ToggleRegistration(ctx context.Context, eventID, userID string, form domain.RegistrationForm) (*domain.RegistrationOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcome := &domain.RegistrationOutcome{}
	event, err := s.mutator.mutate(ctx, eventID, func(e *domain.Event) error {
		if !e.AllowParticipation {
			return domain.ErrParticipationDisabled
		}
		if removeParticipant(e, userID) {
			return nil
		}
		p, err := s.admit(e, userID, form)
		if err != nil {
			return err
		}
		outcome.Registered = true
		outcome.Participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome.Registered {
		s.sendConfirmation(ctx, user, event, outcome.Participant)
	}
	return outcome, nil
}

func (s *participationService) SubmitFeedback(ctx context.Context, eventID, userID string, rating int, comment string) (*domain.Feedback, error) {
	if rating < minRating || rating > maxRating {
		verr := &domain.ValidationError{}
		verr.Add("rating", fmt.Sprintf("must be between %d and %d", minRating, maxRating))
		return nil, verr
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var fb *domain.Feedback
	_, err := s.mutator.mutate(ctx, eventID, func(e *domain.Event) error {
		idx := e.ParticipantIndex(userID)
		if idx < 0 {
			return domain.ErrNotRegistered
		}
		fb = &domain.Feedback{Rating: rating, Comment: comment, SubmittedAt: s.now()}
		e.Participants[idx].Feedback = fb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *participationService) ListParticipants(ctx context.Context, eventID, requesterID string) ([]domain.ParticipantView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != requesterID {
		return nil, domain.ErrForbidden
	}
	return expandParticipants(ctx, s.userRepo, event.Participants)
}

func (s *participationService) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, domain.EventFilter{ParticipantID: userID})
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	return events, nil
}

func (s *participationService) ListHistory(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	events, err := s.eventRepo.List(ctx, domain.EventFilter{ParticipantID: userID, Before: &now})
	if err != nil {
		return nil, fmt.Errorf("list event history: %w", err)
	}
	return events, nil
}

// admit validates the form and appends a participant. It must run under the event lock.
func (s *participationService) admit(e *domain.Event, userID string, form domain.RegistrationForm) (*domain.Participant, error) {
	data, answers, err := ValidateRegistration(e, form)
	if err != nil {
		return nil, err
	}
	if e.IsFull() {
		return nil, domain.ErrEventFull
	}
	p := domain.Participant{
		UserID:           userID,
		RegistrationData: data,
		CustomAnswers:    answers,
		RegisteredAt:     s.now(),
	}
	e.Participants = append(e.Participants, p)
	return &p, nil
}

func removeParticipant(e *domain.Event, userID string) bool {
	idx := e.ParticipantIndex(userID)
	if idx < 0 {
		return false
	}
	e.Participants = append(e.Participants[:idx], e.Participants[idx+1:]...)
	return true
}

func (s *participationService) requireUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// sendConfirmation is best effort: the registration is already stored.
func (s *participationService) sendConfirmation(ctx context.Context, user *domain.User, event *domain.Event, p *domain.Participant) {
	if s.emailService == nil || p == nil {
		return
	}
	err := s.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationEmailData{
		Email:       user.Email,
		StudentName: p.RegistrationData.StudentName,
		EventTitle:  event.Title,
		EventDate:   event.Date,
		Location:    event.Location,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "registration confirmation not sent", "event_id", event.ID, "user_id", user.ID, "err", err)
	}
}

// expandParticipants resolves participant user references to profiles. Users that no
// longer exist are left with a nil profile.
func expandParticipants(ctx context.Context, userRepo domain.UserRepository, participants []domain.Participant) ([]domain.ParticipantView, error) {
	views := make([]domain.ParticipantView, 0, len(participants))
	if len(participants) == 0 {
		return views, nil
	}
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	users, err := userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list participant users: %w", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, p := range participants {
		v := domain.ParticipantView{Participant: p}
		if u, ok := byID[p.UserID]; ok {
			v.User = u.Profile()
		}
		views = append(views, v)
	}
	return views, nil
}
