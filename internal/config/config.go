package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN  string
	RabbitURL    string
	RedisAddr    string
	MongoURI     string
	RequestQueue string
	ReplyQueue   string
	HTTPAddr     string
	SeedFile     string
	HoldTTL      time.Duration
	MaxInFlight  int64
	OTLPEndpoint string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	holdTTL, _ := time.ParseDuration(os.Getenv("HOLD_TTL"))
	if holdTTL == 0 {
		holdTTL = time.Minute
	}

	maxInFlight, _ := strconv.ParseInt(os.Getenv("MAX_IN_FLIGHT"), 10, 64)
	if maxInFlight == 0 {
		maxInFlight = 6
	}

	cfg := &Config{
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		MongoURI:     os.Getenv("MONGO_URI"),
		RequestQueue: os.Getenv("REQUEST_QUEUE"),
		ReplyQueue:   os.Getenv("REPLY_QUEUE"),
		HTTPAddr:     os.Getenv("HTTP_ADDR"),
		SeedFile:     os.Getenv("SEED_FILE"),
		HoldTTL:      holdTTL,
		MaxInFlight:  maxInFlight,
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if cfg.RequestQueue == "" {
		cfg.RequestQueue = "hotel.requests"
	}
	if cfg.ReplyQueue == "" {
		cfg.ReplyQueue = "orchestrator.replies"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = "hotels.json"
	}
	return cfg, nil
}
