package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/hotel-booking-saga/internal/adapters/postgres"
	"github.com/robertarktes/hotel-booking-saga/internal/config"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
)

// One-shot schema migration and inventory seed, for environments where the
// service itself must not own DDL.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	if err := repo.SeedIfEmpty(ctx, cfg.SeedFile, logger); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	logger.Info("seed loader finished")
}
