package rabbit

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers replies to the orchestrator's queue.
type Publisher struct {
	ch    *amqp.Channel
	queue string
}

func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, messageID string, body []byte) error {
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		MessageId:   messageID,
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
