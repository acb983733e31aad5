package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/stretchr/testify/mock"
)

// memDB is an in-memory stand-in for the PostgreSQL tables.
type memDB struct {
	mu       sync.Mutex
	events   map[string]model.Event
	bookings map[string]model.Booking
	users    map[string]model.User
	order    []string
}

func newMemDB() *memDB {
	return &memDB{
		events:   map[string]model.Event{},
		bookings: map[string]model.Booking{},
		users:    map[string]model.User{},
	}
}

// fakeTx runs units of work one at a time, like a single contended event
// row lock.
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(ctx)
}

type fakeEvents struct {
	db *memDB
}

func (f fakeEvents) Create(_ context.Context, e *model.Event) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.events[e.ID] = *e
	f.db.order = append(f.db.order, e.ID)
	return nil
}

func (f fakeEvents) Update(_ context.Context, organizerID string, e *model.Event) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cur, ok := f.db.events[e.ID]
	if !ok || !cur.OwnedBy(organizerID) {
		return model.ErrNotFound
	}
	f.db.events[e.ID] = *e
	return nil
}

func (f fakeEvents) Delete(_ context.Context, id string, organizerID *string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cur, ok := f.db.events[id]
	if !ok || (organizerID != nil && !cur.OwnedBy(*organizerID)) {
		return model.ErrNotFound
	}
	delete(f.db.events, id)
	for t, b := range f.db.bookings {
		if b.EventID == id {
			delete(f.db.bookings, t)
		}
	}
	return nil
}

func (f fakeEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

func (f fakeEvents) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return f.GetByID(ctx, id)
}

func (f fakeEvents) Availability(ctx context.Context, id string) (*model.Availability, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	booked, _ := fakeBookings(f).SumByEvent(ctx, id)
	return &model.Availability{Event: *e, Remaining: e.Seats.Sub(booked)}, nil
}

func (f fakeEvents) List(context.Context) ([]model.EventListing, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.EventListing
	for _, id := range f.db.order {
		if e, ok := f.db.events[id]; ok {
			out = append(out, model.EventListing{ID: e.ID, Title: e.Title, Date: e.Date, Location: e.Location, StartingPrice: e.Prices.Min()})
		}
	}
	return out, nil
}

func (f fakeEvents) ListByOrganizer(_ context.Context, organizerID string) ([]model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Event
	for _, id := range f.db.order {
		if e, ok := f.db.events[id]; ok && e.OwnedBy(organizerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEvents) ListWithOrganizer(context.Context) ([]model.AdminEventRow, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.AdminEventRow
	for _, id := range f.db.order {
		e, ok := f.db.events[id]
		if !ok {
			continue
		}
		name := "Admin"
		if e.OrganizerID != nil {
			name = f.db.users[*e.OrganizerID].Name
		}
		out = append(out, model.AdminEventRow{ID: e.ID, Title: e.Title, Date: e.Date, Location: e.Location, OrganizerName: name})
	}
	return out, nil
}

type fakeBookings struct {
	db *memDB
}

func (f fakeBookings) Insert(_ context.Context, b *model.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.events[b.EventID]; !ok {
		return model.ErrNotFound
	}
	if _, ok := f.db.bookings[b.TicketID]; ok {
		return model.ErrConflict
	}
	f.db.bookings[b.TicketID] = *b
	return nil
}

func (f fakeBookings) Get(_ context.Context, ticketID string) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[ticketID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &b, nil
}

func (f fakeBookings) Delete(_ context.Context, ticketID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.bookings[ticketID]; !ok {
		return model.ErrNotFound
	}
	delete(f.db.bookings, ticketID)
	return nil
}

func (f fakeBookings) SumByEvent(_ context.Context, eventID string) (model.TierCounts, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var sum model.TierCounts
	for _, b := range f.db.bookings {
		if b.EventID == eventID {
			sum.VIP += b.Quantities.VIP
			sum.VVIP += b.Quantities.VVIP
			sum.MIP += b.Quantities.MIP
			sum.Celebrity += b.Quantities.Celebrity
		}
	}
	return sum, nil
}

func (f fakeBookings) ListByUser(_ context.Context, userID string) ([]model.BookingSummary, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.BookingSummary
	for _, b := range f.db.bookings {
		if b.UserID != userID {
			continue
		}
		e := f.db.events[b.EventID]
		out = append(out, model.BookingSummary{Booking: b, EventTitle: e.Title, EventLocation: e.Location, EventDate: e.Date})
	}
	slices.SortFunc(out, func(a, b model.BookingSummary) int { return b.BookedAt.Compare(a.BookedAt) })
	return out, nil
}

type fakeUsers struct {
	db *memDB
}

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.users {
		if existing.Email == u.Email {
			return model.ErrConflict
		}
	}
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) List(context.Context) ([]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]model.User, 0, len(f.db.users))
	for _, u := range f.db.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b model.User) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f fakeUsers) UpdateRole(_ context.Context, id string, role model.Role) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Role = role
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.db.users, id)
	for t, b := range f.db.bookings {
		if b.UserID == id {
			delete(f.db.bookings, t)
		}
	}
	return nil
}

// memCache is an in-process AvailabilityCache with per-event generations.
type memCache struct {
	mu          sync.Mutex
	entries     map[string]memEntry
	generations map[string]int64
	invalidated []string
}

type memEntry struct {
	availability model.Availability
	generation   int64
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]memEntry{}, generations: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, eventID string) (*model.Availability, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[eventID]
	e, ok := c.entries[eventID]
	if !ok || e.generation != gen {
		return nil, gen, nil
	}
	return &e.availability, gen, nil
}

func (c *memCache) Set(_ context.Context, a *model.Availability, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.Event.ID] = memEntry{availability: *a, generation: generation}
	return nil
}

func (c *memCache) Invalidate(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[eventID]++
	delete(c.entries, eventID)
	c.invalidated = append(c.invalidated, eventID)
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingCreated(ctx context.Context, b model.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockNotifier) BookingCancelled(ctx context.Context, b model.Booking) error {
	return m.Called(ctx, b).Error(0)
}
