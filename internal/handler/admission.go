package handler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
)

// AdmissionController decides whether a room/date request gets a hold.
// A hold is a soft lock: it squats one unit of the room's capacity until it
// is confirmed, rolled back, or goes stale past the TTL and a contending
// request reclaims it. Reclamation is lazy, there is no background sweeper.
type AdmissionController struct {
	gw  Gateway
	ttl time.Duration
}

func NewAdmissionController(gw Gateway, ttl time.Duration) *AdmissionController {
	return &AdmissionController{gw: gw, ttl: ttl}
}

// PlaceHold runs the capacity check for one request and inserts the hold if
// it fits. Returns domain.ErrNotFound for unknown hotel/room, and
// domain.ErrNoCapacity when the room is full even after reclaiming expired
// holds. The caller must hold the capacity lock across this entire call:
// the count-decide-write sequence is not atomic against a concurrent insert.
func (a *AdmissionController) PlaceHold(ctx context.Context, transactionID uuid.UUID, req saga.HotelRequest) error {
	room, hotel, err := a.gw.FindRoomAndHotel(ctx, req.HotelName, req.RoomType)
	if err != nil {
		return err
	}

	count, err := a.gw.CountOverlapping(ctx, room.ID, req.BookFrom, req.BookTo)
	if err != nil {
		return errors.Wrap(err, "count overlapping bookings")
	}

	if count < room.Amount {
		return a.gw.InsertHold(ctx, room.ID, hotel.ID, transactionID, req.BookFrom, req.BookTo)
	}

	expired, err := a.gw.CountExpiredHolds(ctx, room.ID, req.BookFrom, req.BookTo, a.ttl)
	if err != nil {
		return errors.Wrap(err, "count expired holds")
	}
	if count-expired >= room.Amount {
		return domain.ErrNoCapacity
	}

	reclaimed, err := a.gw.DeleteExpiredHolds(ctx, room.ID, req.BookFrom, req.BookTo, a.ttl)
	if err != nil {
		return errors.Wrap(err, "delete expired holds")
	}
	observability.ExpiredHoldsReclaimed.Add(float64(reclaimed))

	return a.gw.InsertHold(ctx, room.ID, hotel.ID, transactionID, req.BookFrom, req.BookTo)
}
