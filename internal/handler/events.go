package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventCatalog is the event behaviour the HTTP layer needs.
type EventCatalog interface {
	ListEvents(ctx context.Context) ([]model.EventListing, error)
	GetEvent(ctx context.Context, id string) (*model.Availability, error)
	CreateEvent(ctx context.Context, id model.Identity, in model.EventInput) (*model.Event, error)
	UpdateEvent(ctx context.Context, id model.Identity, eventID string, in model.EventInput) (*model.Event, error)
	DeleteEvent(ctx context.Context, id model.Identity, eventID string) error
	OrganizerEvents(ctx context.Context, id model.Identity) ([]model.Event, error)
	AdminEvents(ctx context.Context, id model.Identity) ([]model.AdminEventRow, error)
}

// EventHandler serves the event catalogue and event management routes.
type EventHandler struct {
	svc EventCatalog
	log *zap.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventCatalog, log *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// GetEvent handles GET /events/{id}
// Returns the event with its display availability.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.View())
}

// CreateEvent handles POST /organizer/events and POST /admin/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadBody(w, err)
		return
	}

	e, err := h.svc.CreateEvent(r.Context(), identity(r), in)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEvent handles PUT /organizer/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadBody(w, err)
		return
	}

	e, err := h.svc.UpdateEvent(r.Context(), identity(r), chi.URLParam(r, "id"), in)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /organizer/events/{id} and DELETE /admin/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrganizerEvents handles GET /organizer/events
func (h *EventHandler) OrganizerEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.OrganizerEvents(r.Context(), identity(r))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// AdminEvents handles GET /admin/events
func (h *EventHandler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.AdminEvents(r.Context(), identity(r))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}
