// Package events publishes cart domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
)

// Event types.
const (
	TypeCartCreated = "cart.created"
	TypeCartUpdated = "cart.updated"
	TypeCartDeleted = "cart.deleted"
)

// Event is the JSON message body published for every cart change.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	CartID      int64     `json:"cart_id"`
	UserID      int64     `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewCartEvent describes cart as it stands after (or, for deletes, before) the change.
func NewCartEvent(eventType string, cart *domain.Cart, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		CartID:      cart.ID,
		UserID:      cart.UserID,
		TotalAmount: cart.TotalAmount,
		ItemCount:   len(cart.Items),
		OccurredAt:  at.UTC(),
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event. Used when events are disabled.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of one publish.
const DefaultDialTimeout = 5 * time.Second

// AMQP connection tuning used for every publish connection.
const (
	amqpHeartbeat = 10 * time.Second
	amqpLocale    = "en_US"
)

// AMQPPublisher publishes persistent JSON messages to a durable queue through
// the default exchange. Each publish opens its own connection, so a broker
// outage never leaves the publisher in a broken state.
type AMQPPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	logger      zerolog.Logger
}

// NewAMQPPublisher creates a publisher for the given broker URL and queue.
// A non-positive dialTimeout selects DefaultDialTimeout.
func NewAMQPPublisher(url, queue string, dialTimeout time.Duration, logger zerolog.Logger) *AMQPPublisher {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &AMQPPublisher{
		url:         url,
		queue:       queue,
		dialTimeout: dialTimeout,
		logger:      logger.With().Str("component", "events").Str("queue", queue).Logger(),
	}
}

// Publish declares the queue and sends event as a persistent message.
// The connection is closed as soon as ctx ends, which aborts any pending
// broker call.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) (err error) {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return fmt.Errorf("failed to dial broker: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: amqpHeartbeat,
		Locale:    amqpLocale,
	})
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = errors.Join(err, ctx.Err())
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().Str("event_id", event.ID).Str("type", event.Type).Int64("cart_id", event.CartID).Msg("event published")
	return nil
}

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*AMQPPublisher)(nil)
)
