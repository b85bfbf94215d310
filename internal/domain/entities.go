package domain

import (
	"time"

	"github.com/google/uuid"
)

// Temporary marks the hold state of a booking row.
type Temporary int

const (
	TemporaryUnset     Temporary = -1
	TemporaryConfirmed Temporary = 0
	TemporaryHeld      Temporary = 1
)

type Hotel struct {
	ID          int64
	Name        string
	Country     string
	City        string
	AirportCode string
	AirportName string
}

// Room is one bookable room type of a hotel. Amount is the number of
// physical units; the occupancy limits only matter to the search endpoints.
type Room struct {
	ID          int64
	HotelID     int64
	Name        string
	Amount      int
	MinPeople   int
	MaxPeople   int
	MinAdults   int
	MaxAdults   int
	MinChildren int
	MaxChildren int
	Max10yo     int
	MaxLesser   int
	Price       float64
}

// Booking holds or confirms a room for a date range on behalf of one saga.
// At most one live booking exists per transaction id per room.
type Booking struct {
	ID            int64
	HotelID       int64
	RoomID        int64
	TransactionID uuid.UUID
	Temporary     Temporary
	TemporaryDt   time.Time
	BookFrom      time.Time
	BookTo        time.Time
}

// Expired reports whether a held booking is older than ttl at instant now.
func (b Booking) Expired(now time.Time, ttl time.Duration) bool {
	return b.Temporary == TemporaryHeld && now.Sub(b.TemporaryDt) > ttl
}

// Overlaps reports whether the booking range strictly overlaps [from, to).
func (b Booking) Overlaps(from, to time.Time) bool {
	return b.BookFrom.Before(to) && b.BookTo.After(from)
}
