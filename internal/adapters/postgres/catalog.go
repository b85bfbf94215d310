package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
)

// SearchQuery filters rooms for the read-only /hotels projection.
// An empty Cities slice means every city.
type SearchQuery struct {
	From           time.Time
	To             time.Time
	Cities         []string
	Adults         int
	Children       int
	TenYearOlds    int
	LesserChildren int
}

// RoomWithHotel is a search row: the room plus its owning hotel.
type RoomWithHotel struct {
	Room  domain.Room
	Hotel domain.Hotel
}

// SearchRooms lists rooms matching the occupancy limits that still have a
// free unit for the requested range.
func (r *Repository) SearchRooms(ctx context.Context, q SearchQuery) ([]RoomWithHotel, error) {
	cities := q.Cities
	if cities == nil {
		cities = []string{}
	}
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.hotel_id, r.name, r.amount,
		       r.min_people, r.max_people, r.min_adults, r.max_adults,
		       r.min_children, r.max_children, r.max_10yo, r.max_lesser, r.price,
		       h.id, h.name, h.country, h.city, h.airport_code, h.airport_name
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.max_adults >= $1 AND r.min_adults <= $1
		  AND r.max_children >= $2 AND r.min_children <= $2
		  AND r.max_10yo >= $3
		  AND r.max_lesser >= $4
		  AND (cardinality($5::text[]) = 0 OR h.city = ANY($5))
		  AND (SELECT count(*) FROM bookings b
		       WHERE b.room_id = r.id AND b.book_from < $7 AND b.book_to > $6) < r.amount
		ORDER BY h.id, r.id
	`, q.Adults, q.Children, q.TenYearOlds, q.LesserChildren, cities, q.From, q.To)
	if err != nil {
		return nil, errors.Wrap(err, "search rooms")
	}
	defer rows.Close()

	var results []RoomWithHotel
	for rows.Next() {
		var rw RoomWithHotel
		if err := rows.Scan(
			&rw.Room.ID, &rw.Room.HotelID, &rw.Room.Name, &rw.Room.Amount,
			&rw.Room.MinPeople, &rw.Room.MaxPeople, &rw.Room.MinAdults, &rw.Room.MaxAdults,
			&rw.Room.MinChildren, &rw.Room.MaxChildren, &rw.Room.Max10yo, &rw.Room.MaxLesser, &rw.Room.Price,
			&rw.Hotel.ID, &rw.Hotel.Name, &rw.Hotel.Country, &rw.Hotel.City, &rw.Hotel.AirportCode, &rw.Hotel.AirportName,
		); err != nil {
			return nil, err
		}
		results = append(results, rw)
	}
	return results, rows.Err()
}

// GetHotel returns a hotel and its room types.
func (r *Repository) GetHotel(ctx context.Context, id int64) (domain.Hotel, []domain.Room, error) {
	var hotel domain.Hotel
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, country, city, airport_code, airport_name
		FROM hotels WHERE id = $1
	`, id).Scan(&hotel.ID, &hotel.Name, &hotel.Country, &hotel.City, &hotel.AirportCode, &hotel.AirportName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Hotel{}, nil, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, nil, errors.Wrap(err, "get hotel")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, hotel_id, name, amount,
		       min_people, max_people, min_adults, max_adults,
		       min_children, max_children, max_10yo, max_lesser, price
		FROM rooms WHERE hotel_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return domain.Hotel{}, nil, errors.Wrap(err, "get hotel rooms")
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID, &room.HotelID, &room.Name, &room.Amount,
			&room.MinPeople, &room.MaxPeople, &room.MinAdults, &room.MaxAdults,
			&room.MinChildren, &room.MaxChildren, &room.Max10yo, &room.MaxLesser, &room.Price,
		); err != nil {
			return domain.Hotel{}, nil, err
		}
		rooms = append(rooms, room)
	}
	return hotel, rooms, rows.Err()
}

// Locations lists every hotel's country and city for the locations tree.
func (r *Repository) Locations(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT country, city FROM hotels ORDER BY country, city
	`)
	if err != nil {
		return nil, errors.Wrap(err, "locations")
	}
	defer rows.Close()

	var hotels []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.Country, &h.City); err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}
