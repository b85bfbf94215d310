package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/hotel-booking-saga/internal/adapters/mongo"
	"github.com/robertarktes/hotel-booking-saga/internal/adapters/postgres"
	"github.com/robertarktes/hotel-booking-saga/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/hotel-booking-saga/internal/adapters/redis"
	"github.com/robertarktes/hotel-booking-saga/internal/config"
	"github.com/robertarktes/hotel-booking-saga/internal/handler"
	httphandler "github.com/robertarktes/hotel-booking-saga/internal/http"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownOtel, err := observability.SetupOTel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

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
		logger.WithError(err).Warn("seed skipped")
	}

	var dedupe rabbit.Deduper
	var cache httphandler.Cache
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		dedupe = redisadapter.NewDedupe(redisClient, 24*time.Hour)
		cache = redisadapter.NewCache(redisClient)
	}

	var audit handler.Auditor
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		audit = mongoadapter.NewAuditLogger(mongoClient.Database("hotel_saga"), logger)
	}

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()

	consumer, err := rabbit.NewConsumer(rabbitConn, cfg.RequestQueue)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	publisher, err := rabbit.NewPublisher(rabbitConn, cfg.ReplyQueue)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	requests := make(chan saga.Message)
	publish := make(chan saga.Message, 256)

	h := handler.New(handler.Params{
		Requests:    requests,
		Publish:     publish,
		Gateway:     repo,
		HoldTTL:     cfg.HoldTTL,
		MaxInFlight: cfg.MaxInFlight,
		Audit:       audit,
		Logger:      logger,
	})
	bridge := rabbit.NewBridge(consumer, publisher, requests, publish, dedupe, logger)

	go func() {
		if err := h.Run(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("dispatch loop stopped")
		}
	}()
	go func() {
		if err := bridge.ConsumeLoop(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("consume loop stopped")
		}
	}()
	go func() {
		if err := bridge.PublishLoop(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("publish loop stopped")
		}
	}()

	handlers := httphandler.NewHandlers(repo, cache, logger)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httphandler.SetupRouter(handlers, logger),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown hotel service ...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Hotel service exiting")
}
