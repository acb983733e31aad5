// Package messaging announces committed bookings and cancellations on a
// RabbitMQ topic exchange.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeKind = "topic"

	RoutingBookingCreated   = "booking.created"
	RoutingBookingCancelled = "booking.cancelled"
)

// BookingMessage is the body of every booking notification.
type BookingMessage struct {
	TicketID   string           `json:"ticket_id"`
	EventID    string           `json:"event_id"`
	UserID     string           `json:"user_id"`
	Quantities model.TierCounts `json:"quantities"`
	TotalPrice int64            `json:"total_price"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends booking notifications. It is safe for concurrent use.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
	log      *zap.Logger
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *zap.Logger) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.Named("messaging"),
	}
}

// BookingCreated announces an accepted booking.
func (p *Publisher) BookingCreated(ctx context.Context, b model.Booking) error {
	return p.publish(ctx, RoutingBookingCreated, p.message(b))
}

// BookingCancelled announces a cancelled booking.
func (p *Publisher) BookingCancelled(ctx context.Context, b model.Booking) error {
	return p.publish(ctx, RoutingBookingCancelled, p.message(b))
}

func (p *Publisher) message(b model.Booking) BookingMessage {
	return BookingMessage{
		TicketID:   b.TicketID,
		EventID:    b.EventID,
		UserID:     b.UserID,
		Quantities: b.Quantities,
		TotalPrice: b.TotalPrice,
		OccurredAt: p.now(),
	}
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("published", zap.String("exchange", p.exchange), zap.String("routing_key", routingKey))
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
