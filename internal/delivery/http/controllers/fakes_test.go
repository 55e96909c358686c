package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetPrincipal(r.Context(), &domain.Principal{UserID: userID, Role: domain.RoleStudent}))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

// decodeData re-decodes envelope.Data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	require.Nil(t, envelope.Error, "success response must have error nil")
	b, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dest))
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	err        error
	user       *domain.User
	token      string
	lastInput  domain.NewUserInput
	lastEmail  string
	lastUserID string
	lastUpdate domain.ProfileUpdate
}

func (f *fakeAuthService) Register(_ context.Context, in domain.NewUserInput) (string, *domain.User, error) {
	f.lastInput = in
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) GetProfile(_ context.Context, userID string) (*domain.User, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuthService) UpdateProfile(_ context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	f.lastUserID = userID
	f.lastUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err           error
	events        []*domain.Event
	detail        *domain.EventDetail
	upcomingCalls int
	listCalls     int
	lastFilter    domain.EventFilter
	lastOwnerID   string
	lastInput     domain.EventInput
	lastUpdate    domain.EventUpdate
	lastEventID   string
	lastRequester string
}

func (f *fakeEventService) CreateEvent(_ context.Context, ownerID string, in domain.EventInput) (*domain.Event, error) {
	f.lastOwnerID = ownerID
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: "ev-created", Title: in.Title, Date: in.Date, CreatedBy: ownerID}, nil
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID string) (*domain.EventDetail, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.listCalls++
	f.lastFilter = filter
	return f.events, f.err
}

func (f *fakeEventService) ListUpcoming(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.upcomingCalls++
	f.lastFilter = filter
	return f.events, f.err
}

func (f *fakeEventService) ListEventsByOwner(_ context.Context, ownerID string) ([]*domain.Event, error) {
	f.lastOwnerID = ownerID
	return f.events, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, requesterID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastEventID = eventID
	f.lastRequester = requesterID
	f.lastUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: eventID, Title: upd.Title.Or("unchanged"), CreatedBy: requesterID}, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, requesterID string) error {
	f.lastEventID = eventID
	f.lastRequester = requesterID
	return f.err
}

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	err         error
	outcome     *domain.RegistrationOutcome
	views       []domain.ParticipantView
	events      []*domain.Event
	lastEventID string
	lastUserID  string
	lastForm    domain.RegistrationForm
	lastRating  int
	lastComment string
}

func (f *fakeParticipationService) Register(_ context.Context, eventID, userID string, form domain.RegistrationForm) (*domain.Participant, error) {
	f.lastEventID, f.lastUserID, f.lastForm = eventID, userID, form
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Participant{UserID: userID}, nil
}

func (f *fakeParticipationService) Unregister(_ context.Context, eventID, userID string) error {
	f.lastEventID, f.lastUserID = eventID, userID
	return f.err
}

func (f *fakeParticipationService) ToggleRegistration(_ context.Context, eventID, userID string, form domain.RegistrationForm) (*domain.RegistrationOutcome, error) {
	f.lastEventID, f.lastUserID, f.lastForm = eventID, userID, form
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeParticipationService) SubmitFeedback(_ context.Context, eventID, userID string, rating int, comment string) (*domain.Feedback, error) {
	f.lastEventID, f.lastUserID = eventID, userID
	f.lastRating, f.lastComment = rating, comment
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Feedback{Rating: rating, Comment: comment}, nil
}

func (f *fakeParticipationService) ListParticipants(_ context.Context, eventID, requesterID string) ([]domain.ParticipantView, error) {
	f.lastEventID, f.lastUserID = eventID, requesterID
	return f.views, f.err
}

func (f *fakeParticipationService) ListRegisteredEvents(_ context.Context, userID string) ([]*domain.Event, error) {
	f.lastUserID = userID
	return f.events, f.err
}

func (f *fakeParticipationService) ListHistory(_ context.Context, userID string) ([]*domain.Event, error) {
	f.lastUserID = userID
	return f.events, f.err
}

// fakeFavoriteService implements domain.FavoriteService for handler tests.
type fakeFavoriteService struct {
	err         error
	events      []*domain.Event
	lastUserID  string
	lastEventID string
	added       int
	removed     int
}

func (f *fakeFavoriteService) AddFavorite(_ context.Context, userID, eventID string) error {
	f.lastUserID, f.lastEventID = userID, eventID
	f.added++
	return f.err
}

func (f *fakeFavoriteService) RemoveFavorite(_ context.Context, userID, eventID string) error {
	f.lastUserID, f.lastEventID = userID, eventID
	f.removed++
	return f.err
}

func (f *fakeFavoriteService) ListFavorites(_ context.Context, userID string) ([]*domain.Event, error) {
	f.lastUserID = userID
	return f.events, f.err
}
