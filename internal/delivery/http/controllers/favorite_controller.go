package controllers

import (
	"log/slog"
	"net/http"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type FavoriteController struct {
	Logger  *slog.Logger
	Service domain.FavoriteService
}

func NewFavoriteController(logger *slog.Logger, svc domain.FavoriteService) *FavoriteController {
	return &FavoriteController{
		Logger:  logger,
		Service: svc,
	}
}

// ListFavorites godoc
// @Summary The caller's favorite events
// @Description Favorites whose event was deleted are skipped.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data: []Event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/favorites [get]
func (c *FavoriteController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListFavorites(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// AddFavorite godoc
// @Summary Add an event to favorites
// @Description Idempotent.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: MessageResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /auth/favorites/{eventId} [post]
func (c *FavoriteController) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	if err := c.Service.AddFavorite(r.Context(), userID, eventID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: "Added to favorites"})
}

// RemoveFavorite godoc
// @Summary Remove an event from favorites
// @Description Idempotent.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: MessageResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/favorites/{eventId} [delete]
func (c *FavoriteController) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	if err := c.Service.RemoveFavorite(r.Context(), userID, eventID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: "Removed from favorites"})
}
