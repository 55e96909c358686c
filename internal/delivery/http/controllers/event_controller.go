package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title              string                       `json:"title" validate:"required,max=200"`
	Date               time.Time                    `json:"date" validate:"required"`
	Location           string                       `json:"location" validate:"required"`
	Description        string                       `json:"description" validate:"required"`
	Image              string                       `json:"image"`
	Category           string                       `json:"category" validate:"required"`
	MaxAttendees       *int                         `json:"maxAttendees" validate:"omitempty,min=1"`
	Tags               []string                     `json:"tags"`
	Prerequisites      string                       `json:"prerequisites"`
	ContactEmail       string                       `json:"contactEmail" validate:"omitempty,email"`
	AllowParticipation bool                         `json:"allowParticipation"`
	CustomQuestions    []domain.CustomQuestionInput `json:"customQuestions"`
}

// UpdateEventRequest is the request body for PUT /events/{id}. Only fields present in the
// body are applied.
type UpdateEventRequest struct {
	Title              domain.Optional[string]                       `json:"title"`
	Date               domain.Optional[time.Time]                    `json:"date"`
	Location           domain.Optional[string]                       `json:"location"`
	Description        domain.Optional[string]                       `json:"description"`
	Image              domain.Optional[string]                       `json:"image"`
	Category           domain.Optional[string]                       `json:"category"`
	MaxAttendees       domain.Optional[*int]                         `json:"maxAttendees"`
	Tags               domain.Optional[[]string]                     `json:"tags"`
	Prerequisites      domain.Optional[string]                       `json:"prerequisites"`
	ContactEmail       domain.Optional[string]                       `json:"contactEmail"`
	AllowParticipation domain.Optional[bool]                         `json:"allowParticipation"`
	CustomQuestions    domain.Optional[[]domain.CustomQuestionInput] `json:"customQuestions"`
}

// Validate implements helpers.Validator.
func (r UpdateEventRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if r.MaxAttendees.Set && r.MaxAttendees.Value != nil && *r.MaxAttendees.Value < 1 {
		errs = append(errs, domain.FieldError{Field: "maxAttendees", Message: "must be at least 1"})
	}
	return errs
}

// EventMutationResponse is returned by create and update.
type EventMutationResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Events sorted by date ascending. `upcoming=true` keeps only events dated after now.
// @Tags events
// @Produce json
// @Param category query string false "Category (case-insensitive)"
// @Param q query string false "Matches title, description or location"
// @Param upcoming query bool false "Only future events"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data: Page of Event"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}
	var (
		events []*domain.Event
		err    error
	)
	if q.Get("upcoming") == "true" {
		events, err = c.Service.ListUpcoming(r.Context(), filter)
	} else {
		events, err = c.Service.ListEvents(r.Context(), filter)
	}
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewPage(events, h.ParsePagination(r)))
}

// ListMine godoc
// @Summary Events owned by the caller
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data: []Event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/mine [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEventsByOwner(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Description Owner and participants are expanded to user profiles.
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: EventDetail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// CreateEvent godoc
// @Summary Create an event
// @Description The caller becomes the owner. allowParticipation defaults to false.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event"
// @Success 201 {object} helpers.APIResponse "data: EventMutationResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, domain.EventInput{
		Title:              req.Title,
		Date:               req.Date,
		Location:           req.Location,
		Description:        req.Description,
		Image:              req.Image,
		Category:           req.Category,
		MaxAttendees:       req.MaxAttendees,
		Tags:               req.Tags,
		Prerequisites:      req.Prerequisites,
		ContactEmail:       req.ContactEmail,
		AllowParticipation: req.AllowParticipation,
		CustomQuestions:    req.CustomQuestions,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, EventMutationResponse{Message: "Event created", Event: event})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Owner only. Fields absent from the body keep their stored value.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data: EventMutationResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, domain.EventUpdate{
		Title:              req.Title,
		Date:               req.Date,
		Location:           req.Location,
		Description:        req.Description,
		Image:              req.Image,
		Category:           req.Category,
		MaxAttendees:       req.MaxAttendees,
		Tags:               req.Tags,
		Prerequisites:      req.Prerequisites,
		ContactEmail:       req.ContactEmail,
		AllowParticipation: req.AllowParticipation,
		CustomQuestions:    req.CustomQuestions,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventMutationResponse{Message: "Event updated", Event: event})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: MessageResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: "Event removed"})
}
