package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert records an accepted booking.
func (r *BookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO bookings (ticket_id, user_id, event_id,
			vip_qty, vvip_qty, mip_qty, celebrity_qty, total_price, booking_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.TicketID, b.UserID, b.EventID,
		b.Quantities.VIP, b.Quantities.VVIP, b.Quantities.MIP, b.Quantities.Celebrity,
		b.TotalPrice, b.BookedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err), isInvalidUUID(err):
			return model.ErrNotFound
		case isUniqueViolation(err):
			return model.ErrConflict
		}
		return storeErr("insert booking", err)
	}
	return nil
}

// Get returns a booking by ticket id or ErrNotFound.
func (r *BookingRepository) Get(ctx context.Context, ticketID string) (*model.Booking, error) {
	var b model.Booking
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT ticket_id, user_id, event_id,
			vip_qty, vvip_qty, mip_qty, celebrity_qty, total_price, booking_date
		 FROM bookings WHERE ticket_id = $1`, ticketID,
	).Scan(&b.TicketID, &b.UserID, &b.EventID,
		&b.Quantities.VIP, &b.Quantities.VVIP, &b.Quantities.MIP, &b.Quantities.Celebrity,
		&b.TotalPrice, &b.BookedAt)
	if err != nil {
		return nil, lookupErr("get booking", err)
	}
	return &b, nil
}

// Delete removes a booking. It returns ErrNotFound when the row is already
// gone, e.g. after a concurrent cancellation.
func (r *BookingRepository) Delete(ctx context.Context, ticketID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM bookings WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return storeErr("delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SumByEvent returns the seats held by live bookings per tier.
func (r *BookingRepository) SumByEvent(ctx context.Context, eventID string) (model.TierCounts, error) {
	var c model.TierCounts
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COALESCE(SUM(vip_qty), 0), COALESCE(SUM(vvip_qty), 0),
			COALESCE(SUM(mip_qty), 0), COALESCE(SUM(celebrity_qty), 0)
		 FROM bookings WHERE event_id = $1`, eventID,
	).Scan(&c.VIP, &c.VVIP, &c.MIP, &c.Celebrity)
	if err != nil {
		if isInvalidUUID(err) {
			return model.TierCounts{}, model.ErrNotFound
		}
		return model.TierCounts{}, storeErr("sum bookings", err)
	}
	return c, nil
}

// ListByUser returns a user's bookings with event details, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingSummary, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT b.ticket_id, b.user_id, b.event_id,
			b.vip_qty, b.vvip_qty, b.mip_qty, b.celebrity_qty, b.total_price, b.booking_date,
			e.title, e.location, e.date
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.booking_date DESC`, userID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, storeErr("list bookings", err)
	}

	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BookingSummary, error) {
		var s model.BookingSummary
		err := row.Scan(&s.TicketID, &s.UserID, &s.EventID,
			&s.Quantities.VIP, &s.Quantities.VVIP, &s.Quantities.MIP, &s.Quantities.Celebrity,
			&s.TotalPrice, &s.BookedAt,
			&s.EventTitle, &s.EventLocation, &s.EventDate)
		return s, err
	})
	if err != nil {
		return nil, storeErr("scan bookings", err)
	}
	return bookings, nil
}
