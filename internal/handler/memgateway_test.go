package handler_test

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
)

// memGateway is an in-memory storage gateway. Like the real one it makes
// each call atomic but provides no cross-call isolation, so it exercises the
// handler's locking for real.
type memGateway struct {
	mu       sync.Mutex
	hotels   map[string]domain.Hotel
	rooms    map[string]domain.Room
	bookings []domain.Booking
	nextID   int64
	failing  bool
}

func newMemGateway() *memGateway {
	return &memGateway{
		hotels: make(map[string]domain.Hotel),
		rooms:  make(map[string]domain.Room),
	}
}

func (g *memGateway) addRoom(hotelName, roomName string, amount int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	hotel, ok := g.hotels[hotelName]
	if !ok {
		g.nextID++
		hotel = domain.Hotel{ID: g.nextID, Name: hotelName}
		g.hotels[hotelName] = hotel
	}
	g.nextID++
	g.rooms[hotelName+"/"+roomName] = domain.Room{
		ID:      g.nextID,
		HotelID: hotel.ID,
		Name:    roomName,
		Amount:  amount,
	}
}

// addHold plants a held booking aged by the given amount.
func (g *memGateway) addHold(hotelName, roomName string, transactionID uuid.UUID, from, to time.Time, age time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.rooms[hotelName+"/"+roomName]
	g.nextID++
	g.bookings = append(g.bookings, domain.Booking{
		ID:            g.nextID,
		HotelID:       room.HotelID,
		RoomID:        room.ID,
		TransactionID: transactionID,
		Temporary:     domain.TemporaryHeld,
		TemporaryDt:   time.Now().Add(-age),
		BookFrom:      from,
		BookTo:        to,
	})
}

func (g *memGateway) snapshot() []domain.Booking {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.Booking, len(g.bookings))
	copy(out, g.bookings)
	return out
}

func (g *memGateway) FindRoomAndHotel(ctx context.Context, hotelName, roomType string) (domain.Room, domain.Hotel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return domain.Room{}, domain.Hotel{}, errors.New("storage down")
	}
	room, ok := g.rooms[hotelName+"/"+roomType]
	if !ok {
		return domain.Room{}, domain.Hotel{}, domain.ErrNotFound
	}
	hotel, ok := g.hotels[hotelName]
	if !ok {
		return domain.Room{}, domain.Hotel{}, domain.ErrNotFound
	}
	return room, hotel, nil
}

func (g *memGateway) CountOverlapping(ctx context.Context, roomID int64, from, to time.Time) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return 0, errors.New("storage down")
	}
	count := 0
	for _, b := range g.bookings {
		if b.RoomID == roomID && b.Overlaps(from, to) {
			count++
		}
	}
	return count, nil
}

func (g *memGateway) CountExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return 0, errors.New("storage down")
	}
	now := time.Now()
	count := 0
	for _, b := range g.bookings {
		if b.RoomID == roomID && b.Overlaps(from, to) && b.Expired(now, ttl) {
			count++
		}
	}
	return count, nil
}

func (g *memGateway) DeleteExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return 0, errors.New("storage down")
	}
	now := time.Now()
	var kept []domain.Booking
	var deleted int64
	for _, b := range g.bookings {
		if b.RoomID == roomID && b.Overlaps(from, to) && b.Expired(now, ttl) {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	g.bookings = kept
	return deleted, nil
}

func (g *memGateway) InsertHold(ctx context.Context, roomID, hotelID int64, transactionID uuid.UUID, from, to time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return errors.New("storage down")
	}
	g.nextID++
	g.bookings = append(g.bookings, domain.Booking{
		ID:            g.nextID,
		HotelID:       hotelID,
		RoomID:        roomID,
		TransactionID: transactionID,
		Temporary:     domain.TemporaryHeld,
		TemporaryDt:   time.Now(),
		BookFrom:      from,
		BookTo:        to,
	})
	return nil
}

func (g *memGateway) ConfirmHold(ctx context.Context, transactionID uuid.UUID) (domain.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return domain.Booking{}, errors.New("storage down")
	}
	for i, b := range g.bookings {
		if b.TransactionID == transactionID {
			g.bookings[i].Temporary = domain.TemporaryConfirmed
			return g.bookings[i], nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

func (g *memGateway) DeleteByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return 0, errors.New("storage down")
	}
	var kept []domain.Booking
	var deleted int64
	for _, b := range g.bookings {
		if b.TransactionID == transactionID {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	g.bookings = kept
	return deleted, nil
}
