package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/thescaler/shortener/internal/model"
)

const publishTimeout = 5 * time.Second

// Publisher mirrors click events onto a RabbitMQ queue for downstream
// consumers (reporting, geo enrichment). Best effort only: the durable
// store stays the source of truth and publish failures are dropped.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// NewPublisher dials the broker and declares the click queue.
func NewPublisher(url, queue string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		queue:   queue,
		logger:  logger,
	}, nil
}

// Publish sends one click event as JSON to the click queue. Failures are
// logged and discarded.
func (p *Publisher) Publish(event model.ClickEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal click event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.OccurredAt,
		Body:        body,
	})
	if err != nil {
		p.logger.Warn("failed to publish click event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
	}
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
