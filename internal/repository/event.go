package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `e.id, e.title, e.description, e.date, e.location, e.organizer_id,
	e.vip_price, e.vvip_price, e.mip_price, e.celebrity_price,
	e.vip_seats, e.vvip_seats, e.mip_seats, e.celebrity_seats, e.created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func eventDest(e *model.Event) []any {
	return []any{
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.OrganizerID,
		&e.Prices.VIP, &e.Prices.VVIP, &e.Prices.MIP, &e.Prices.Celebrity,
		&e.Seats.VIP, &e.Seats.VVIP, &e.Seats.MIP, &e.Seats.Celebrity, &e.CreatedAt,
	}
}

// Create inserts a new event. The caller assigns ID and CreatedAt.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO events (id, title, description, date, location, organizer_id,
			vip_price, vvip_price, mip_price, celebrity_price,
			vip_seats, vvip_seats, mip_seats, celebrity_seats, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.OrganizerID,
		e.Prices.VIP, e.Prices.VVIP, e.Prices.MIP, e.Prices.Celebrity,
		e.Seats.VIP, e.Seats.VVIP, e.Seats.MIP, e.Seats.Celebrity, e.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrNotFound
		}
		return storeErr("insert event", err)
	}
	return nil
}

// Update overwrites the editable fields of an event owned by organizerID.
// It returns ErrNotFound when no such event belongs to that organizer.
func (r *EventRepository) Update(ctx context.Context, organizerID string, e *model.Event) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, date = $3, location = $4,
		     vip_price = $5, vvip_price = $6, mip_price = $7, celebrity_price = $8,
		     vip_seats = $9, vvip_seats = $10, mip_seats = $11, celebrity_seats = $12
		 WHERE id = $13 AND organizer_id = $14`,
		e.Title, e.Description, e.Date, e.Location,
		e.Prices.VIP, e.Prices.VVIP, e.Prices.MIP, e.Prices.Celebrity,
		e.Seats.VIP, e.Seats.VVIP, e.Seats.MIP, e.Seats.Celebrity,
		e.ID, organizerID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrNotFound
		}
		return storeErr("update event", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes an event and, by cascade, its bookings. A non-nil
// organizerID restricts the delete to that organizer's events.
func (r *EventRepository) Delete(ctx context.Context, id string, organizerID *string) error {
	var (
		sql  = `DELETE FROM events WHERE id = $1`
		args = []any{id}
	)
	if organizerID != nil {
		sql += ` AND organizer_id = $2`
		args = append(args, *organizerID)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrNotFound
		}
		return storeErr("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id,
	).Scan(eventDest(&e)...)
	if err != nil {
		return nil, lookupErr("get event", err)
	}
	return &e, nil
}

// GetForUpdate returns the event and holds an exclusive row lock on it until
// the surrounding transaction ends. Every booking and cancellation for the
// event passes through this lock, which serialises them per event.
func (r *EventRepository) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id,
	).Scan(eventDest(&e)...)
	if err != nil {
		return nil, lookupErr("lock event row", err)
	}
	return &e, nil
}

// Availability returns the event together with its raw remaining seats per
// tier, computed in one statement.
func (r *EventRepository) Availability(ctx context.Context, id string) (*model.Availability, error) {
	var (
		a      model.Availability
		booked model.TierCounts
	)
	dest := append(eventDest(&a.Event),
		&booked.VIP, &booked.VVIP, &booked.MIP, &booked.Celebrity)

	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+eventColumns+`,
			COALESCE(SUM(b.vip_qty), 0),
			COALESCE(SUM(b.vvip_qty), 0),
			COALESCE(SUM(b.mip_qty), 0),
			COALESCE(SUM(b.celebrity_qty), 0)
		 FROM events e
		 LEFT JOIN bookings b ON b.event_id = e.id
		 WHERE e.id = $1
		 GROUP BY e.id`, id,
	).Scan(dest...)
	if err != nil {
		return nil, lookupErr("query availability", err)
	}
	a.Remaining = a.Event.Seats.Sub(booked)
	return &a, nil
}

// List returns the event catalogue ordered by date.
func (r *EventRepository) List(ctx context.Context) ([]model.EventListing, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT id, title, date, location,
			LEAST(vip_price, vvip_price, mip_price, celebrity_price)
		 FROM events
		 ORDER BY date ASC, created_at ASC`,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.EventListing, error) {
		var l model.EventListing
		err := row.Scan(&l.ID, &l.Title, &l.Date, &l.Location, &l.StartingPrice)
		return l, err
	})
	if err != nil {
		return nil, storeErr("scan events", err)
	}
	return events, nil
}

// ListByOrganizer returns an organizer's events, latest date first.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+eventColumns+` FROM events e
		 WHERE e.organizer_id = $1
		 ORDER BY e.date DESC`, organizerID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, storeErr("list organizer events", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		err := row.Scan(eventDest(&e)...)
		return e, err
	})
	if err != nil {
		return nil, storeErr("scan events", err)
	}
	return events, nil
}

// ListWithOrganizer returns every event with its owner's display name.
// Administrator-owned events report "Admin".
func (r *EventRepository) ListWithOrganizer(ctx context.Context) ([]model.AdminEventRow, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT e.id, e.title, e.date, e.location, COALESCE(u.name, 'Admin')
		 FROM events e
		 LEFT JOIN users u ON u.id = e.organizer_id
		 ORDER BY e.date ASC`,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AdminEventRow, error) {
		var a model.AdminEventRow
		err := row.Scan(&a.ID, &a.Title, &a.Date, &a.Location, &a.OrganizerName)
		return a, err
	})
	if err != nil {
		return nil, storeErr("scan events", err)
	}
	return events, nil
}
