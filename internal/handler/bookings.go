package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Ledger is the booking behaviour the HTTP layer needs.
type Ledger interface {
	Availability(ctx context.Context, eventID string) (*model.Availability, error)
	Book(ctx context.Context, id model.Identity, eventID string, qty model.TierCounts) (*model.Receipt, error)
	Cancel(ctx context.Context, id model.Identity, ticketID string) error
	MyBookings(ctx context.Context, id model.Identity) ([]model.BookingSummary, error)
}

// BookingHandler serves availability, booking and cancellation.
type BookingHandler struct {
	svc Ledger
	log *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc Ledger, log *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

type availabilityResponse struct {
	EventID   string           `json:"event_id"`
	Available model.TierCounts `json:"available"`
}

// Availability handles GET /events/{id}/availability
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Availability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{EventID: a.Event.ID, Available: a.Display()})
}

// Book handles POST /events/{id}/bookings
// Seats are granted for every requested tier or for none.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	receipt, err := h.svc.Book(r.Context(), identity(r), chi.URLParam(r, "id"), req.Quantities())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// MyBookings handles GET /bookings
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.MyBookings(r.Context(), identity(r))
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookings))
}

// Cancel handles DELETE /bookings/{ticketID}
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), identity(r), chi.URLParam(r, "ticketID")); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
