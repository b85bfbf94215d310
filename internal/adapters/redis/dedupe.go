package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
)

// Dedupe marks broker deliveries it has seen. The orchestrator's hop counter
// makes transactionId plus messageId unique per hop, so a SETNX on that pair
// filters at-least-once redeliveries.
type Dedupe struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupe(client *redis.Client, ttl time.Duration) *Dedupe {
	return &Dedupe{client: client, ttl: ttl}
}

func (d *Dedupe) FirstDelivery(ctx context.Context, m saga.Message) (bool, error) {
	key := "saga:" + m.TransactionID.String() + ":" + strconv.Itoa(m.MessageID)
	res := d.client.SetNX(ctx, key, 1, d.ttl)
	return res.Val(), res.Err()
}
