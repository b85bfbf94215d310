package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS hotels (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	country      TEXT NOT NULL,
	city         TEXT NOT NULL,
	airport_code TEXT NOT NULL DEFAULT '',
	airport_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS rooms (
	id           BIGSERIAL PRIMARY KEY,
	hotel_id     BIGINT NOT NULL REFERENCES hotels (id),
	name         TEXT NOT NULL,
	amount       INT NOT NULL,
	min_people   INT NOT NULL DEFAULT 0,
	max_people   INT NOT NULL DEFAULT 0,
	min_adults   INT NOT NULL DEFAULT 0,
	max_adults   INT NOT NULL DEFAULT 0,
	min_children INT NOT NULL DEFAULT 0,
	max_children INT NOT NULL DEFAULT 0,
	max_10yo     INT NOT NULL DEFAULT 0,
	max_lesser   INT NOT NULL DEFAULT 0,
	price        NUMERIC NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bookings (
	id             BIGSERIAL PRIMARY KEY,
	hotel_id       BIGINT NOT NULL REFERENCES hotels (id),
	room_id        BIGINT NOT NULL REFERENCES rooms (id),
	transaction_id UUID NOT NULL,
	temporary      INT NOT NULL DEFAULT -1,
	temporary_dt   TIMESTAMPTZ NOT NULL DEFAULT now(),
	book_from      TIMESTAMPTZ NOT NULL,
	book_to        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS bookings_room_range_idx ON bookings (room_id, book_from, book_to);
CREATE INDEX IF NOT EXISTS bookings_transaction_idx ON bookings (transaction_id);
CREATE INDEX IF NOT EXISTS rooms_hotel_idx ON rooms (hotel_id);
`

// Migrate creates the schema when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate schema")
	}
	return nil
}
