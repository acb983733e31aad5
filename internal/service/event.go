package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxTierSeats = 100_000

// AvailabilityReader answers inventory queries.
type AvailabilityReader interface {
	Availability(ctx context.Context, eventID string) (*model.Availability, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events       EventStore
	availability AvailabilityReader
	cache        AvailabilityCache
	clock        clock.Clock
	log          *zap.Logger
}

// NewEventService constructs an EventService. cache may be nil.
func NewEventService(events EventStore, availability AvailabilityReader, cache AvailabilityCache, clk clock.Clock, log *zap.Logger) *EventService {
	return &EventService{
		events:       events,
		availability: availability,
		cache:        cache,
		clock:        clk,
		log:          log.Named("events"),
	}
}

// ListEvents returns the catalogue.
func (s *EventService) ListEvents(ctx context.Context) ([]model.EventListing, error) {
	return s.events.List(ctx)
}

// GetEvent returns an event with its remaining seats.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Availability, error) {
	return s.availability.Availability(ctx, id)
}

// CreateEvent validates the input and stores a new event. Organizers own
// the events they create; administrator events have no owner.
func (s *EventService) CreateEvent(ctx context.Context, id model.Identity, in model.EventInput) (*model.Event, error) {
	var owner *string
	switch id.Role {
	case model.RoleOrganizer:
		owner = &id.UserID
	case model.RoleAdmin:
		owner = nil
	case model.RoleUser:
		return nil, fmt.Errorf("%w: only organizers and admins create events", model.ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrForbidden, id.Role)
	}

	prices := model.DefaultTierPrices
	if in.Prices != nil {
		prices = *in.Prices
	}
	e := &model.Event{
		ID:          uuid.NewString(),
		OrganizerID: owner,
		CreatedAt:   s.clock.Now(),
	}
	if err := applyInput(e, in, prices); err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("event created", zap.String("event_id", e.ID), zap.String("by", id.UserID), zap.String("role", string(id.Role)))
	return e, nil
}

// UpdateEvent edits an event owned by the calling organizer. Omitted prices
// keep their current values.
func (s *EventService) UpdateEvent(ctx context.Context, id model.Identity, eventID string, in model.EventInput) (*model.Event, error) {
	switch id.Role {
	case model.RoleOrganizer:
	case model.RoleAdmin, model.RoleUser:
		return nil, fmt.Errorf("%w: only the owning organizer edits an event", model.ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrForbidden, id.Role)
	}

	current, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !current.OwnedBy(id.UserID) {
		return nil, model.ErrNotFound
	}

	prices := current.Prices
	if in.Prices != nil {
		prices = *in.Prices
	}
	updated := *current
	if err := applyInput(&updated, in, prices); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, id.UserID, &updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx, eventID)
	s.log.Info("event updated", zap.String("event_id", eventID), zap.String("by", id.UserID))
	return &updated, nil
}

// DeleteEvent removes an event and its bookings. Admins may delete any
// event, organizers only their own.
func (s *EventService) DeleteEvent(ctx context.Context, id model.Identity, eventID string) error {
	var scope *string
	switch id.Role {
	case model.RoleAdmin:
		scope = nil
	case model.RoleOrganizer:
		scope = &id.UserID
	case model.RoleUser:
		return fmt.Errorf("%w: users cannot delete events", model.ErrForbidden)
	default:
		return fmt.Errorf("%w: unknown role %q", model.ErrForbidden, id.Role)
	}

	if err := s.events.Delete(ctx, eventID, scope); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	s.log.Info("event deleted", zap.String("event_id", eventID), zap.String("by", id.UserID), zap.String("role", string(id.Role)))
	return nil
}

// OrganizerEvents returns the calling organizer's events.
func (s *EventService) OrganizerEvents(ctx context.Context, id model.Identity) ([]model.Event, error) {
	if id.Role != model.RoleOrganizer {
		return nil, fmt.Errorf("%w: organizer role required", model.ErrForbidden)
	}
	return s.events.ListByOrganizer(ctx, id.UserID)
}

// AdminEvents returns every event with its organizer's name.
func (s *EventService) AdminEvents(ctx context.Context, id model.Identity) ([]model.AdminEventRow, error) {
	if id.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", model.ErrForbidden)
	}
	return s.events.ListWithOrganizer(ctx)
}

func (s *EventService) invalidate(ctx context.Context, eventID string) {
	invalidateAvailability(ctx, s.cache, s.log, eventID)
}

// applyInput validates in and copies it onto e.
func applyInput(e *model.Event, in model.EventInput, prices model.TierPrices) error {
	title := strings.TrimSpace(in.Title)
	location := strings.TrimSpace(in.Location)

	var problems []string
	if title == "" {
		problems = append(problems, "title is required")
	}
	if location == "" {
		problems = append(problems, "location is required")
	}
	if in.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if in.Seats.AnyNegative() {
		problems = append(problems, "seat counts cannot be negative")
	}
	for _, t := range model.Tiers {
		if in.Seats.Get(t) > maxTierSeats {
			problems = append(problems, fmt.Sprintf("%s seats cannot exceed %d", t, maxTierSeats))
		}
	}
	if prices.AnyNegative() {
		problems = append(problems, "prices cannot be negative")
	}
	for _, t := range model.Tiers {
		if prices.Get(t) > model.MaxTierPrice {
			problems = append(problems, fmt.Sprintf("%s price cannot exceed %d", t, model.MaxTierPrice))
		}
	}
	if len(problems) > 0 {
		return model.Invalid("%s", strings.Join(problems, "; "))
	}

	e.Title = title
	e.Description = strings.TrimSpace(in.Description)
	e.Date = in.Date.UTC()
	e.Location = location
	e.Prices = prices
	e.Seats = in.Seats
	return nil
}
