package rabbit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
)

// Deduper filters redelivered broker messages. FirstDelivery reports whether
// this transaction/hop pair has not been seen before.
type Deduper interface {
	FirstDelivery(ctx context.Context, m saga.Message) (bool, error)
}

// Bridge connects the broker to the handler's channel pair. Malformed or
// duplicate payloads never reach the dispatch loop; the delivery is acked or
// rejected based on whether routing into the request channel succeeded.
type Bridge struct {
	consumer  *Consumer
	publisher *Publisher
	requests  chan<- saga.Message
	publish   <-chan saga.Message
	dedupe    Deduper
	logger    observability.Logger
}

func NewBridge(consumer *Consumer, publisher *Publisher, requests chan<- saga.Message, publish <-chan saga.Message, dedupe Deduper, logger observability.Logger) *Bridge {
	return &Bridge{
		consumer:  consumer,
		publisher: publisher,
		requests:  requests,
		publish:   publish,
		dedupe:    dedupe,
		logger:    logger,
	}
}

// ConsumeLoop drains broker deliveries into the request channel.
func (b *Bridge) ConsumeLoop(ctx context.Context) error {
	deliveries, err := b.consumer.Consume(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			var msg saga.Message
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				observability.MessagesDropped.WithLabelValues("malformed").Inc()
				b.logger.WithError(err).WithField("delivery_tag", d.DeliveryTag).Warn("rejecting malformed message")
				d.Reject(false)
				continue
			}

			if b.dedupe != nil {
				first, err := b.dedupe.FirstDelivery(ctx, msg)
				if err != nil {
					b.logger.WithError(err).Warn("dedupe check failed, letting message through")
				} else if !first {
					observability.MessagesDropped.WithLabelValues("duplicate").Inc()
					b.logger.WithField("transaction_id", msg.TransactionID).Debug("acking duplicate delivery")
					d.Ack(false)
					continue
				}
			}

			select {
			case <-ctx.Done():
				d.Reject(true)
				return ctx.Err()
			case b.requests <- msg:
				d.Ack(false)
			}
		}
	}
}

// PublishLoop drains the outbound channel into the orchestrator's queue.
// A publish failure drops the reply; the orchestrator's timeout covers it.
func (b *Bridge) PublishLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-b.publish:
			if !ok {
				return nil
			}
			body, err := json.Marshal(msg)
			if err != nil {
				b.logger.WithError(err).Error("serialize reply")
				continue
			}
			messageID := msg.TransactionID.String() + ":" + strconv.Itoa(msg.MessageID)
			if err := b.publisher.Publish(ctx, messageID, body); err != nil {
				observability.MessagesDropped.WithLabelValues("publish_error").Inc()
				b.logger.WithError(err).WithField("transaction_id", msg.TransactionID).Error("publish reply")
			}
		}
	}
}
