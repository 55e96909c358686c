package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*domain.Principal, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &domain.Principal{UserID: "user-1", Role: domain.RoleStudent}, nil
}

// recordingEvents records which operation a route reached. Unused methods panic via the nil embed.
type recordingEvents struct {
	domain.EventService
	called string
	arg    string
}

func (s *recordingEvents) ListEvents(context.Context, domain.EventFilter) ([]*domain.Event, error) {
	s.called = "ListEvents"
	return nil, nil
}

func (s *recordingEvents) GetEvent(_ context.Context, id string) (*domain.EventDetail, error) {
	s.called, s.arg = "GetEvent", id
	return &domain.EventDetail{Event: &domain.Event{ID: id}}, nil
}

func (s *recordingEvents) ListEventsByOwner(_ context.Context, ownerID string) ([]*domain.Event, error) {
	s.called, s.arg = "ListEventsByOwner", ownerID
	return nil, nil
}

type recordingParticipation struct {
	domain.ParticipationService
	called string
	arg    string
}

func (s *recordingParticipation) ListRegisteredEvents(_ context.Context, userID string) ([]*domain.Event, error) {
	s.called, s.arg = "ListRegisteredEvents", userID
	return nil, nil
}

func (s *recordingParticipation) ListHistory(_ context.Context, userID string) ([]*domain.Event, error) {
	s.called, s.arg = "ListHistory", userID
	return nil, nil
}

func (s *recordingParticipation) ToggleRegistration(_ context.Context, eventID, _ string, _ domain.RegistrationForm) (*domain.RegistrationOutcome, error) {
	s.called, s.arg = "ToggleRegistration", eventID
	return &domain.RegistrationOutcome{}, nil
}

func newTestRouter(events domain.EventService, participation domain.ParticipationService) *http.ServeMux {
	return NewRouter(Controllers{
		Auth:          controllers.NewAuthController(testLogger, nil),
		Events:        controllers.NewEventController(testLogger, events),
		Participation: controllers.NewParticipationController(testLogger, participation),
		Favorites:     controllers.NewFavoriteController(testLogger, nil),
	}, stubVerifier{}, testLogger)
}

func TestRouter_Dispatch(t *testing.T) {
	tests := []struct {
		name            string
		method          string
		path            string
		wantEvents      string
		wantParticipate string
		wantArg         string
	}{
		{name: "public list", method: http.MethodGet, path: "/events", wantEvents: "ListEvents"},
		{name: "event by id", method: http.MethodGet, path: "/events/ev-9", wantEvents: "GetEvent", wantArg: "ev-9"},
		{name: "mine is not an id", method: http.MethodGet, path: "/events/mine", wantEvents: "ListEventsByOwner", wantArg: "user-1"},
		{name: "registered view", method: http.MethodGet, path: "/events/registered", wantParticipate: "ListRegisteredEvents", wantArg: "user-1"},
		{name: "history view", method: http.MethodGet, path: "/events/history", wantParticipate: "ListHistory", wantArg: "user-1"},
		{name: "toggle", method: http.MethodPost, path: "/events/ev-3/register", wantParticipate: "ToggleRegistration", wantArg: "ev-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &recordingEvents{}
			participation := &recordingParticipation{}
			router := newTestRouter(events, participation)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer good")
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantEvents, events.called)
			assert.Equal(t, tt.wantParticipate, participation.called)
			if tt.wantArg != "" {
				assert.Equal(t, tt.wantArg, events.arg+participation.arg)
			}
		})
	}
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodPost, "/events"},
		{http.MethodPut, "/events/ev-1"},
		{http.MethodDelete, "/events/ev-1"},
		{http.MethodGet, "/events/mine"},
		{http.MethodPost, "/events/ev-1/register"},
		{http.MethodPost, "/events/ev-1/registration"},
		{http.MethodDelete, "/events/ev-1/registration"},
		{http.MethodPost, "/events/ev-1/feedback"},
		{http.MethodGet, "/events/ev-1/participants"},
		{http.MethodGet, "/auth/profile"},
		{http.MethodPut, "/auth/profile"},
		{http.MethodGet, "/auth/favorites"},
		{http.MethodPost, "/auth/favorites/ev-1"},
		{http.MethodDelete, "/auth/favorites/ev-1"},
	}
	router := newTestRouter(&recordingEvents{}, &recordingParticipation{})

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer forged")
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(&recordingEvents{}, &recordingParticipation{})
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/events/ev-1", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
