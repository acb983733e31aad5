// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "cinebook/service"

	// sideEffectTimeout bounds post-commit cache and broker calls.
	sideEffectTimeout = 5 * time.Second
)

// Transactor runs fn in a single database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, organizerID string, e *model.Event) error
	Delete(ctx context.Context, id string, organizerID *string) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetForUpdate(ctx context.Context, id string) (*model.Event, error)
	Availability(ctx context.Context, id string) (*model.Availability, error)
	List(ctx context.Context) ([]model.EventListing, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
	ListWithOrganizer(ctx context.Context) ([]model.AdminEventRow, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, ticketID string) (*model.Booking, error)
	Delete(ctx context.Context, ticketID string) error
	SumByEvent(ctx context.Context, eventID string) (model.TierCounts, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingSummary, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
	Delete(ctx context.Context, id string) error
}

// AvailabilityCache holds display copies of availability. Get returns nil
// on a miss along with the event's cache generation; a snapshot passed to Set
// with that generation is discarded if Invalidate runs in between.
type AvailabilityCache interface {
	Get(ctx context.Context, eventID string) (*model.Availability, int64, error)
	Set(ctx context.Context, a *model.Availability, generation int64) error
	Invalidate(ctx context.Context, eventID string) error
}

// BookingNotifier announces committed ledger changes.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, b model.Booking) error
	BookingCancelled(ctx context.Context, b model.Booking) error
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// detach returns a context that survives cancellation of ctx but expires
// after sideEffectTimeout.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

// invalidateAvailability drops an event's cached availability after a
// committed change. Failures are logged.
func invalidateAvailability(ctx context.Context, cache AvailabilityCache, log *zap.Logger, eventID string) {
	if cache == nil {
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := cache.Invalidate(ctx, eventID); err != nil {
		log.Warn("availability cache invalidation failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// isValidEmail does a structural check and rejects display-name forms.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return strings.Contains(email[at+1:], ".")
}
