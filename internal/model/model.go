// Package model defines the core domain types for the event ticketing system.
package model

import "time"

// Event represents a ticketed event with four seat tiers.
// A nil OrganizerID means the event is owned by an administrator.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	Location    string     `json:"location"`
	OrganizerID *string    `json:"organizer_id,omitempty"`
	Prices      TierPrices `json:"prices"`
	Seats       TierCounts `json:"seats"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OwnedBy reports whether the event was created by the given organizer.
func (e *Event) OwnedBy(userID string) bool {
	return e.OrganizerID != nil && *e.OrganizerID == userID
}

// EventListing is the catalogue view of an event.
type EventListing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	StartingPrice int64     `json:"starting_price"`
}

// AdminEventRow is an event as shown to administrators, with the owner's name.
type AdminEventRow struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	OrganizerName string    `json:"organizer_name"`
}

// Availability is the result of an inventory query. Remaining holds the raw
// per-tier values, which go negative when capacity was edited below the
// number of seats already sold.
type Availability struct {
	Event     Event      `json:"event"`
	Remaining TierCounts `json:"-"`
}

// Display returns the remaining seats floored at zero.
func (a Availability) Display() TierCounts {
	return a.Remaining.Clamped()
}

// AvailabilityView is the JSON shape of Availability handed to clients.
type AvailabilityView struct {
	Event     Event      `json:"event"`
	Available TierCounts `json:"available"`
}

// View converts the availability to its display form.
func (a Availability) View() AvailabilityView {
	return AvailabilityView{Event: a.Event, Available: a.Display()}
}

// Booking is one accepted purchase. It is immutable once written and only
// ever removed as a whole by cancellation.
type Booking struct {
	TicketID   string     `json:"ticket_id"`
	UserID     string     `json:"user_id"`
	EventID    string     `json:"event_id"`
	Quantities TierCounts `json:"quantities"`
	TotalPrice int64      `json:"total_price"`
	BookedAt   time.Time  `json:"booked_at"`
}

// BookingSummary is a booking joined with the event details shown in a
// user's booking history.
type BookingSummary struct {
	Booking
	EventTitle    string    `json:"event_title"`
	EventLocation string    `json:"event_location"`
	EventDate     time.Time `json:"event_date"`
}

// Receipt is returned after a successful booking.
type Receipt struct {
	TicketID      string     `json:"ticket_id"`
	TotalPrice    int64      `json:"total_price"`
	Quantities    TierCounts `json:"quantities"`
	EventTitle    string     `json:"event_title"`
	EventDate     time.Time  `json:"event_date"`
	EventLocation string     `json:"event_location"`
}

// EventInput is the payload for creating or editing an event.
// Prices may be omitted, in which case DefaultTierPrices apply.
type EventInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Prices      *TierPrices `json:"prices,omitempty"`
	Seats       TierCounts  `json:"seats"`
}

// BookRequest is the payload for booking seats. Omitted tiers default to zero.
type BookRequest struct {
	VIP       int `json:"vip"`
	VVIP      int `json:"vvip"`
	MIP       int `json:"mip"`
	Celebrity int `json:"celebrity"`
}

// Quantities converts the request into per-tier counts.
func (r BookRequest) Quantities() TierCounts {
	return TierCounts{VIP: r.VIP, VVIP: r.VVIP, MIP: r.MIP, Celebrity: r.Celebrity}
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
