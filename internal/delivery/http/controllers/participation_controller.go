package controllers

import (
	"log/slog"
	"net/http"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// FeedbackRequest is the request body for POST /events/{id}/feedback.
type FeedbackRequest struct {
	Rating  wholeNumber `json:"rating" validate:"required,min=1,max=5" swaggertype:"integer"`
	Comment string      `json:"comment" validate:"max=2000"`
}

// ToggleResponse is returned by the registration toggle.
type ToggleResponse struct {
	Message     string              `json:"message"`
	Registered  bool                `json:"registered"`
	Participant *domain.Participant `json:"participant,omitempty"`
}

// RegistrationResponse is returned by the explicit register operation.
type RegistrationResponse struct {
	Message     string              `json:"message"`
	Participant *domain.Participant `json:"participant"`
}

// FeedbackResponse is returned after feedback is stored.
type FeedbackResponse struct {
	Message  string           `json:"message"`
	Feedback *domain.Feedback `json:"feedback"`
}

const (
	msgRegistered   = "Successfully registered for event"
	msgUnregistered = "Successfully unregistered from event"
)

type ParticipationController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService) *ParticipationController {
	return &ParticipationController{
		Logger:  logger,
		Service: svc,
	}
}

// decodeForm reads the flat registration form. An empty body is an empty form so that
// the toggle can unregister without a payload.
func decodeForm(w http.ResponseWriter, r *http.Request) (domain.RegistrationForm, bool) {
	form := domain.RegistrationForm{}
	if !h.DecodeOptionalAndValidate(w, r, &form) {
		return nil, false
	}
	if form == nil {
		form = domain.RegistrationForm{}
	}
	return form, true
}

// ToggleRegistration godoc
// @Summary Register for or unregister from an event
// @Description Registers the caller when not registered, otherwise removes the registration.
// @Description The body is the flat registration form; custom answers use keys `custom_<questionId>`.
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body object false "Registration form"
// @Success 200 {object} helpers.APIResponse "data: ToggleResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{id}/register [post]
func (c *ParticipationController) ToggleRegistration(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	outcome, err := c.Service.ToggleRegistration(r.Context(), eventID, userID, form)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	msg := msgUnregistered
	if outcome.Registered {
		msg = msgRegistered
	}
	h.WriteJSONSuccess(w, http.StatusOK, ToggleResponse{
		Message:     msg,
		Registered:  outcome.Registered,
		Participant: outcome.Participant,
	})
}

// Register godoc
// @Summary Register for an event
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body object true "Registration form"
// @Success 201 {object} helpers.APIResponse "data: RegistrationResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/registration [post]
func (c *ParticipationController) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	p, err := c.Service.Register(r.Context(), eventID, userID, form)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, RegistrationResponse{Message: msgRegistered, Participant: p})
}

// Unregister godoc
// @Summary Cancel a registration
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: MessageResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/registration [delete]
func (c *ParticipationController) Unregister(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Unregister(r.Context(), eventID, userID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: msgUnregistered})
}

// SubmitFeedback godoc
// @Summary Rate an event
// @Description Only participants may submit; a new submission replaces the previous one.
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body FeedbackRequest true "Rating 1-5 and comment"
// @Success 200 {object} helpers.APIResponse "data: FeedbackResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/feedback [post]
func (c *ParticipationController) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req FeedbackRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	fb, err := c.Service.SubmitFeedback(r.Context(), eventID, userID, int(req.Rating), req.Comment)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, FeedbackResponse{Message: "Feedback submitted successfully", Feedback: fb})
}

// ListParticipants godoc
// @Summary Event roster
// @Description Owner only. Participants are expanded to user profiles.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: []ParticipantView"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/participants [get]
func (c *ParticipationController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	views, err := c.Service.ListParticipants(r.Context(), eventID, userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, views)
}

// ListRegistered godoc
// @Summary Events the caller is registered for
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data: []Event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/registered [get]
func (c *ParticipationController) ListRegistered(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListRegisteredEvents(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListHistory godoc
// @Summary Past events the caller attended
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data: []Event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/history [get]
func (c *ParticipationController) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListHistory(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}
