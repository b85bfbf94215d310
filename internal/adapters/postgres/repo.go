package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
)

// Repository implements the storage gateway over a pgx pool. Single
// statements are atomic on their own; multi-statement writes go through
// WithTx. Serializing the admission sequence is the handler's job.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) FindRoomAndHotel(ctx context.Context, hotelName, roomType string) (domain.Room, domain.Hotel, error) {
	var room domain.Room
	var hotel domain.Hotel
	err := r.pool.QueryRow(ctx, `
		SELECT r.id, r.hotel_id, r.name, r.amount,
		       r.min_people, r.max_people, r.min_adults, r.max_adults,
		       r.min_children, r.max_children, r.max_10yo, r.max_lesser, r.price,
		       h.id, h.name, h.country, h.city, h.airport_code, h.airport_name
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE h.name = $1 AND r.name = $2
	`, hotelName, roomType).Scan(
		&room.ID, &room.HotelID, &room.Name, &room.Amount,
		&room.MinPeople, &room.MaxPeople, &room.MinAdults, &room.MaxAdults,
		&room.MinChildren, &room.MaxChildren, &room.Max10yo, &room.MaxLesser, &room.Price,
		&hotel.ID, &hotel.Name, &hotel.Country, &hotel.City, &hotel.AirportCode, &hotel.AirportName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Room{}, domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, domain.Hotel{}, errors.Wrap(err, "find room and hotel")
	}
	return room, hotel, nil
}

func (r *Repository) CountOverlapping(ctx context.Context, roomID int64, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE room_id = $1 AND book_from < $3 AND book_to > $2
	`, roomID, from, to).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count overlapping")
	}
	return count, nil
}

func (r *Repository) CountExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE room_id = $1 AND book_from < $3 AND book_to > $2
		  AND temporary = $4 AND temporary_dt < $5
	`, roomID, from, to, domain.TemporaryHeld, time.Now().Add(-ttl)).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count expired holds")
	}
	return count, nil
}

func (r *Repository) DeleteExpiredHolds(ctx context.Context, roomID int64, from, to time.Time, ttl time.Duration) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM bookings
		WHERE room_id = $1 AND book_from < $3 AND book_to > $2
		  AND temporary = $4 AND temporary_dt < $5
	`, roomID, from, to, domain.TemporaryHeld, time.Now().Add(-ttl))
	if err != nil {
		return 0, errors.Wrap(err, "delete expired holds")
	}
	return result.RowsAffected(), nil
}

func (r *Repository) InsertHold(ctx context.Context, roomID, hotelID int64, transactionID uuid.UUID, from, to time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (hotel_id, room_id, transaction_id, temporary, temporary_dt, book_from, book_to)
		VALUES ($1, $2, $3, $4, now(), $5, $6)
	`, hotelID, roomID, transactionID, domain.TemporaryHeld, from, to)
	if err != nil {
		return errors.Wrap(err, "insert hold")
	}
	return nil
}

func (r *Repository) ConfirmHold(ctx context.Context, transactionID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.pool.QueryRow(ctx, `
		UPDATE bookings SET temporary = $2
		WHERE transaction_id = $1
		RETURNING id, hotel_id, room_id, transaction_id, temporary, temporary_dt, book_from, book_to
	`, transactionID, domain.TemporaryConfirmed).Scan(
		&b.ID, &b.HotelID, &b.RoomID, &b.TransactionID,
		&b.Temporary, &b.TemporaryDt, &b.BookFrom, &b.BookTo,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, errors.Wrap(err, "confirm hold")
	}
	return b, nil
}

func (r *Repository) DeleteByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM bookings WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		return 0, errors.Wrap(err, "delete by transaction")
	}
	return result.RowsAffected(), nil
}
