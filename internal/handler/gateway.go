package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
)

// Gateway is the storage contract the saga handlers run against. Every call
// is atomic on its own; cross-call isolation is the caller's job and is
// provided by the handler's capacity and lookup locks.
type Gateway interface {
	// FindRoomAndHotel resolves a room type by hotel name and room name.
	// Returns domain.ErrNotFound when either is missing.
	FindRoomAndHotel(ctx context.Context, hotelName, roomType string) (domain.Room, domain.Hotel, error)

	// CountOverlapping counts bookings of any temporary state whose range
	// strictly overlaps [from, to).
	CountOverlapping(ctx context.Context, roomID int64, from, to time.Time) (int, error)

	// CountExpiredHolds counts the overlapping holds older than ttl.
	CountExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int, error)

	// DeleteExpiredHolds removes the overlapping holds older than ttl and
	// reports how many rows went away.
	DeleteExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int64, error)

	// InsertHold creates a held booking stamped with the current time.
	InsertHold(ctx context.Context, roomID, hotelID int64, transactionID uuid.UUID, from, to time.Time) error

	// ConfirmHold flips the held booking of a transaction to confirmed.
	// Returns domain.ErrNotFound when no held booking matches.
	ConfirmHold(ctx context.Context, transactionID uuid.UUID) (domain.Booking, error)

	// DeleteByTransaction removes any booking rows of a transaction.
	// Deleting nothing is not an error; compensation is idempotent.
	DeleteByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error)
}
