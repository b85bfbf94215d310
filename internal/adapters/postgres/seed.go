package postgres

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Seed file shapes, matching the scraped hotels.json layout.
type seedRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type seedRoom struct {
	Name     string    `json:"name"`
	People   seedRange `json:"people"`
	Adults   seedRange `json:"adults"`
	Children seedRange `json:"children"`
	Price    float64   `json:"price"`
}

type seedHotel struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
	Airport struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"airport"`
	Rooms []seedRoom `json:"rooms"`
}

// SeedIfEmpty loads hotels.json into an empty database. Room amounts are
// randomized between 1 and 4 like the scraped data never carried them.
func (r *Repository) SeedIfEmpty(ctx context.Context, path string, logger observability.Logger) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM hotels`).Scan(&count); err != nil {
		return errors.Wrap(err, "count hotels")
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var hotels []seedHotel
	if err := json.Unmarshal(data, &hotels); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, hotel := range hotels {
		hotel := hotel
		g.Go(func() error {
			return r.insertHotel(gctx, hotel)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.WithField("hotels", len(hotels)).Info("seeded hotel inventory")
	return nil
}

func (r *Repository) insertHotel(ctx context.Context, hotel seedHotel) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		var hotelID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO hotels (name, country, city, airport_code, airport_name)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, hotel.Name, hotel.Country, hotel.City, hotel.Airport.Code, hotel.Airport.Name).Scan(&hotelID)
		if err != nil {
			return errors.Wrap(err, "insert hotel")
		}

		for _, room := range hotel.Rooms {
			maxLesser := 0
			max10yo := 0
			if room.Children.Max > 0 {
				max10yo = rand.IntN(room.Children.Max)
				maxLesser = rand.IntN(room.Children.Max/2 + 1)
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO rooms (hotel_id, name, amount,
				                   min_people, max_people, min_adults, max_adults,
				                   min_children, max_children, max_10yo, max_lesser, price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, hotelID, room.Name, 1+rand.IntN(4),
				room.People.Min, room.People.Max, room.Adults.Min, room.Adults.Max,
				room.Children.Min, room.Children.Max, max10yo, maxLesser, room.Price)
			if err != nil {
				return errors.Wrap(err, "insert room")
			}
		}
		return nil
	})
}
