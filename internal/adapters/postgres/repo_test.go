package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/hotel-booking-saga/internal/adapters/postgres"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "hotel"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, "postgres://postgres:secret@"+host+":"+port.Port()+"/hotel?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestRepository_HoldLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)

	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	var hotelID, roomID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO hotels (name, country, city) VALUES ('Grand Meridian', 'Spain', 'Barcelona')
		RETURNING id
	`).Scan(&hotelID)
	if err != nil {
		t.Fatal(err)
	}
	err = pool.QueryRow(ctx, `
		INSERT INTO rooms (hotel_id, name, amount, max_adults, max_children) VALUES ($1, 'Double Deluxe', 1, 2, 2)
		RETURNING id
	`, hotelID).Scan(&roomID)
	if err != nil {
		t.Fatal(err)
	}

	room, hotel, err := repo.FindRoomAndHotel(ctx, "Grand Meridian", "Double Deluxe")
	if err != nil {
		t.Fatalf("find room and hotel: %v", err)
	}
	if room.ID != roomID || hotel.ID != hotelID || room.Amount != 1 {
		t.Errorf("unexpected lookup result: room=%+v hotel=%+v", room, hotel)
	}

	if _, _, err := repo.FindRoomAndHotel(ctx, "Grand Meridian", "Penthouse"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown room, got %v", err)
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	txID := uuid.New()

	if err := repo.InsertHold(ctx, roomID, hotelID, txID, from, to); err != nil {
		t.Fatalf("insert hold: %v", err)
	}

	count, err := repo.CountOverlapping(ctx, roomID, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 overlapping booking, got %d", count)
	}

	// A range touching the hold's end boundary does not overlap.
	count, err = repo.CountOverlapping(ctx, roomID, to, to.Add(48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected 0 overlapping bookings past the range, got %d", count)
	}

	// Fresh hold is not expired.
	expired, err := repo.CountExpiredHolds(ctx, roomID, from, to, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if expired != 0 {
		t.Errorf("expected no expired holds, got %d", expired)
	}

	// Age the hold past the TTL and reclaim it.
	if _, err := pool.Exec(ctx, `UPDATE bookings SET temporary_dt = now() - interval '70 seconds' WHERE transaction_id = $1`, txID); err != nil {
		t.Fatal(err)
	}
	expired, err = repo.CountExpiredHolds(ctx, roomID, from, to, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired hold, got %d", expired)
	}
	deleted, err := repo.DeleteExpiredHolds(ctx, roomID, from, to, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted hold, got %d", deleted)
	}

	// Confirm flow.
	txID = uuid.New()
	if err := repo.InsertHold(ctx, roomID, hotelID, txID, from, to); err != nil {
		t.Fatal(err)
	}
	booking, err := repo.ConfirmHold(ctx, txID)
	if err != nil {
		t.Fatalf("confirm hold: %v", err)
	}
	if booking.Temporary != domain.TemporaryConfirmed {
		t.Errorf("expected confirmed booking, got temporary=%d", booking.Temporary)
	}
	if _, err := repo.ConfirmHold(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown transaction, got %v", err)
	}

	// Compensation is idempotent.
	deleted, err = repo.DeleteByTransaction(ctx, txID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted booking, got %d", deleted)
	}
	deleted, err = repo.DeleteByTransaction(ctx, txID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("expected second delete to be a no-op, got %d", deleted)
	}
}

func TestRepository_Catalog(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)

	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	var hotelID, roomID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO hotels (name, country, city) VALUES ('Baltic Pearl', 'Poland', 'Gdansk')
		RETURNING id
	`).Scan(&hotelID)
	if err != nil {
		t.Fatal(err)
	}
	err = pool.QueryRow(ctx, `
		INSERT INTO rooms (hotel_id, name, amount, max_people, max_adults, max_children, max_10yo, max_lesser, price)
		VALUES ($1, 'Double Standard', 1, 2, 2, 1, 1, 1, 89)
		RETURNING id
	`, hotelID).Scan(&roomID)
	if err != nil {
		t.Fatal(err)
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	rows, err := repo.SearchRooms(ctx, postgres.SearchQuery{From: from, To: to, Adults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Room.ID != roomID {
		t.Fatalf("expected the seeded room, got %+v", rows)
	}

	// A booking for the whole range makes the room disappear from search.
	if err := repo.InsertHold(ctx, roomID, hotelID, uuid.New(), from, to); err != nil {
		t.Fatal(err)
	}
	rows, err = repo.SearchRooms(ctx, postgres.SearchQuery{From: from, To: to, Adults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rooms while fully booked, got %d", len(rows))
	}

	hotel, rooms, err := repo.GetHotel(ctx, hotelID)
	if err != nil {
		t.Fatal(err)
	}
	if hotel.Name != "Baltic Pearl" || len(rooms) != 1 {
		t.Errorf("unexpected hotel projection: %+v rooms=%d", hotel, len(rooms))
	}

	locations, err := repo.Locations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(locations) != 1 || locations[0].Country != "Poland" || locations[0].City != "Gdansk" {
		t.Errorf("unexpected locations: %+v", locations)
	}
}
