package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/order"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Notifier announces placed orders to the rest of the system.
type Notifier interface {
	PublishOrderPlaced(ctx context.Context, o *order.Order) error
}

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

const publishTimeout = 3 * time.Second

type Publisher struct {
	ch  Channel
	cb  *gobreaker.CircuitBreaker
	now func() time.Time
}

// Dial opens a connection to the broker and a publisher on top of it.
func Dial(url string) (*amqp.Connection, *Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(ch)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, p, nil
}

func NewPublisher(ch Channel) (*Publisher, error) {
	// Declare queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderPlacedQueue, err)
	}

	settings := gobreaker.Settings{
		Name:        "OrderEvents",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.L().Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Publisher{
		ch:  ch,
		cb:  gobreaker.NewCircuitBreaker(settings),
		now: time.Now,
	}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	body, err := json.Marshal(newOrderPlaced(o, p.now()))
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishJSON(ctx, OrderPlacedQueue, body)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", OrderPlacedQueue, err)
	}

	logger.FromCtx(ctx).Debug("event published",
		zap.String("queue", OrderPlacedQueue),
		zap.String("order_number", o.OrderNumber),
	)
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// NoopNotifier is used when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) PublishOrderPlaced(context.Context, *order.Order) error { return nil }
