package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Participation *controllers.ParticipationController
	Favorites     *controllers.FavoriteController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/profile", auth(c.Auth.GetProfile))
	mux.HandleFunc("PUT /auth/profile", auth(c.Auth.UpdateProfile))

	// Favorites
	mux.HandleFunc("GET /auth/favorites", auth(c.Favorites.ListFavorites))
	mux.HandleFunc("POST /auth/favorites/{eventId}", auth(c.Favorites.AddFavorite))
	mux.HandleFunc("DELETE /auth/favorites/{eventId}", auth(c.Favorites.RemoveFavorite))

	// Events
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/mine", auth(c.Events.ListMine))
	mux.HandleFunc("GET /events/{id}", c.Events.GetEvent)
	mux.HandleFunc("PUT /events/{id}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", auth(c.Events.DeleteEvent))

	// Participation
	mux.HandleFunc("GET /events/registered", auth(c.Participation.ListRegistered))
	mux.HandleFunc("GET /events/history", auth(c.Participation.ListHistory))
	mux.HandleFunc("POST /events/{id}/register", auth(c.Participation.ToggleRegistration))
	mux.HandleFunc("POST /events/{id}/registration", auth(c.Participation.Register))
	mux.HandleFunc("DELETE /events/{id}/registration", auth(c.Participation.Unregister))
	mux.HandleFunc("POST /events/{id}/feedback", auth(c.Participation.SubmitFeedback))
	mux.HandleFunc("GET /events/{id}/participants", auth(c.Participation.ListParticipants))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
