package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"lumira/pkg/domain"
)

const (
	exchangeName = "lumira.readings"
	exchangeType = "topic"

	// RoutingKeyReadingCreated is emitted once per persisted reading.
	RoutingKeyReadingCreated = "reading.created"
)

// Publisher emits domain events after a reading is persisted. Publishing is
// best-effort: callers log failures and continue.
type Publisher interface {
	ReadingCreated(ctx context.Context, r domain.Reading) error
}

// ReadingCreatedEvent is the wire payload for reading.created.
type ReadingCreatedEvent struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	HasAudio  bool      `json:"hasAudio"`
	CreatedAt time.Time `json:"createdAt"`
}

// RabbitPublisher implements Publisher on a RabbitMQ topic exchange.
type RabbitPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher dials the broker and declares the durable exchange.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchangeName, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchangeName, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

// ReadingCreated publishes a persistent reading.created message.
func (p *RabbitPublisher) ReadingCreated(ctx context.Context, r domain.Reading) error {
	body, err := json.Marshal(ReadingCreatedEvent{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		HasAudio:  r.HasAudio(),
		CreatedAt: r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, exchangeName, RoutingKeyReadingCreated, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyReadingCreated, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
