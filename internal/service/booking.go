package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BookingService owns seat inventory. Every booking and cancellation for an
// event runs in one transaction holding that event's row lock, so requests
// for the same event are applied one at a time while different events
// proceed independently.
type BookingService struct {
	tx       Transactor
	events   EventStore
	bookings BookingStore
	cache    AvailabilityCache
	notifier BookingNotifier
	ticketID func() (string, error)
	clock    clock.Clock
	log      *zap.Logger
}

// BookingOption configures optional BookingService collaborators.
type BookingOption func(*BookingService)

// WithAvailabilityCache serves availability reads from c and invalidates it
// after every committed change.
func WithAvailabilityCache(c AvailabilityCache) BookingOption {
	return func(s *BookingService) { s.cache = c }
}

// WithNotifier publishes committed bookings and cancellations to n.
func WithNotifier(n BookingNotifier) BookingOption {
	return func(s *BookingService) { s.notifier = n }
}

// WithTicketIDs overrides the ticket id generator.
func WithTicketIDs(gen func() (string, error)) BookingOption {
	return func(s *BookingService) { s.ticketID = gen }
}

// WithClock overrides the booking timestamp source.
func WithClock(c clock.Clock) BookingOption {
	return func(s *BookingService) { s.clock = c }
}

// NewBookingService constructs a BookingService.
func NewBookingService(tx Transactor, events EventStore, bookings BookingStore, log *zap.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		tx:       tx,
		events:   events,
		bookings: bookings,
		ticketID: NewTicketID,
		clock:    clock.NewSystem(),
		log:      log.Named("ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Availability returns an event with its remaining seats per tier. The
// result may come from the cache and is for display only.
func (s *BookingService) Availability(ctx context.Context, eventID string) (*model.Availability, error) {
	ctx, span := startSpan(ctx, "service.booking.availability")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		return nil, model.ErrNotFound
	}

	var (
		fill       bool
		generation int64
	)
	if s.cache != nil {
		a, gen, err := s.cache.Get(ctx, eventID)
		switch {
		case err != nil:
			s.log.Warn("availability cache read failed", zap.String("event_id", eventID), zap.Error(err))
		case a != nil:
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return a, nil
		default:
			fill, generation = true, gen
		}
	}

	a, err := s.events.Availability(ctx, eventID)
	if err != nil {
		return nil, fail(span, err)
	}

	if fill {
		if err := s.cache.Set(ctx, a, generation); err != nil {
			s.log.Warn("availability cache write failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return a, nil
}

// Book reserves the requested seats for the caller and returns a receipt.
// Either every requested seat is granted or nothing changes.
func (s *BookingService) Book(ctx context.Context, id model.Identity, eventID string, qty model.TierCounts) (*model.Receipt, error) {
	ctx, span := startSpan(ctx, "service.booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("user_id", id.UserID),
		attribute.Int("seats", qty.Sum()),
	)

	if err := canBook(id); err != nil {
		return nil, fail(span, err)
	}
	if err := validateQuantities(qty); err != nil {
		return nil, fail(span, err)
	}
	if eventID == "" {
		return nil, fail(span, model.ErrNotFound)
	}

	var (
		booking model.Booking
		event   *model.Event
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		booked, err := s.bookings.SumByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		remaining := event.Seats.Sub(booked)
		for _, t := range model.Tiers {
			if qty.Get(t) > remaining.Get(t) {
				return &model.CapacityError{Tier: t, Requested: qty.Get(t), Remaining: remaining.Get(t)}
			}
		}

		total, err := event.Prices.Total(qty)
		if err != nil {
			return err
		}

		ticketID, err := s.ticketID()
		if err != nil {
			return fmt.Errorf("generate ticket id: %w", err)
		}
		booking = model.Booking{
			TicketID:   ticketID,
			UserID:     id.UserID,
			EventID:    event.ID,
			Quantities: qty,
			TotalPrice: total,
			BookedAt:   s.clock.Now(),
		}
		return s.bookings.Insert(ctx, &booking)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.log.Info("booking accepted",
		zap.String("ticket_id", booking.TicketID),
		zap.String("event_id", booking.EventID),
		zap.String("user_id", booking.UserID),
		zap.Int64("total_price", booking.TotalPrice),
	)
	s.afterCommit(ctx, booking, true)

	return &model.Receipt{
		TicketID:      booking.TicketID,
		TotalPrice:    booking.TotalPrice,
		Quantities:    booking.Quantities,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventLocation: event.Location,
	}, nil
}

// Cancel removes one of the caller's bookings, returning its seats to the
// event.
func (s *BookingService) Cancel(ctx context.Context, id model.Identity, ticketID string) error {
	ctx, span := startSpan(ctx, "service.booking.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("ticket_id", ticketID), attribute.String("user_id", id.UserID))

	if id.UserID == "" {
		return fail(span, model.ErrUnauthorized)
	}
	if ticketID == "" {
		return fail(span, model.ErrNotFound)
	}

	var booking *model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, ticketID)
		if err != nil {
			return err
		}
		if booking.UserID != id.UserID {
			return fmt.Errorf("%w: booking belongs to another user", model.ErrForbidden)
		}

		if _, err := s.events.GetForUpdate(ctx, booking.EventID); err != nil {
			return err
		}
		return s.bookings.Delete(ctx, ticketID)
	})
	if err != nil {
		return fail(span, err)
	}

	s.log.Info("booking cancelled",
		zap.String("ticket_id", booking.TicketID),
		zap.String("event_id", booking.EventID),
		zap.String("user_id", booking.UserID),
	)
	s.afterCommit(ctx, *booking, false)
	return nil
}

// MyBookings lists the caller's bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, id model.Identity) ([]model.BookingSummary, error) {
	if id.UserID == "" {
		return nil, model.ErrUnauthorized
	}
	return s.bookings.ListByUser(ctx, id.UserID)
}

// afterCommit runs side effects of a committed change. Their failures are
// logged and never undo the change.
func (s *BookingService) afterCommit(ctx context.Context, b model.Booking, created bool) {
	invalidateAvailability(ctx, s.cache, s.log, b.EventID)

	if s.notifier == nil {
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()

	var err error
	if created {
		err = s.notifier.BookingCreated(ctx, b)
	} else {
		err = s.notifier.BookingCancelled(ctx, b)
	}
	if err != nil {
		s.log.Warn("booking notification failed", zap.String("ticket_id", b.TicketID), zap.Error(err))
	}
}

func canBook(id model.Identity) error {
	if id.UserID == "" {
		return model.ErrUnauthorized
	}
	switch id.Role {
	case model.RoleUser, model.RoleOrganizer, model.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", model.ErrForbidden, id.Role)
	}
}

func validateQuantities(qty model.TierCounts) error {
	if qty.AnyNegative() {
		return model.Invalid("ticket quantities cannot be negative")
	}
	if qty.Sum() < 1 {
		return model.Invalid("at least one ticket must be requested")
	}
	return nil
}
