package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sokoni-be/internal/order"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	declareErr error
	publishErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func (f *fakeChannel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func sampleOrder() *order.Order {
	return &order.Order{
		OrderNumber:   "OM-20250102-030405",
		CustomerRef:   "guest:abc",
		Status:        order.StatusPaid,
		PaymentMethod: "mpesa",
		Total:         decimal.NewFromInt(28197),
		Items: []order.Item{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(3999)},
		},
	}
}

func TestNewPublisher(t *testing.T) {
	t.Run("Declares queue", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := NewPublisher(ch)

		require.NoError(t, err)
		assert.Equal(t, []string{OrderPlacedQueue}, ch.declared)
		require.NoError(t, p.Close())
		assert.True(t, ch.closed)
	})

	t.Run("Declare error", func(t *testing.T) {
		_, err := NewPublisher(&fakeChannel{declareErr: errors.New("no broker")})
		assert.ErrorContains(t, err, "declare order.placed")
	})
}

func TestPublisher_PublishOrderPlaced(t *testing.T) {
	ctx := context.Background()

	t.Run("Publishes JSON event", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := NewPublisher(ch)
		require.NoError(t, err)
		p.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

		require.NoError(t, p.PublishOrderPlaced(ctx, sampleOrder()))

		require.Len(t, ch.published, 1)
		assert.Equal(t, OrderPlacedQueue, ch.keys[0])
		msg := ch.published[0]
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

		var ev OrderPlaced
		require.NoError(t, json.Unmarshal(msg.Body, &ev))
		assert.Equal(t, "OrderPlaced", ev.EventType)
		assert.Equal(t, "OM-20250102-030405", ev.OrderNumber)
		assert.Equal(t, "28197.00", ev.Total)
		assert.Equal(t, "paid", ev.Status)
		require.Len(t, ev.Items, 1)
		assert.Equal(t, "3999.00", ev.Items[0].UnitPrice)
	})

	t.Run("Breaker opens after repeated failures", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("connection reset")}
		p, err := NewPublisher(ch)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			err := p.PublishOrderPlaced(ctx, sampleOrder())
			assert.ErrorContains(t, err, "connection reset")
		}

		err = p.PublishOrderPlaced(ctx, sampleOrder())
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 0, ch.calls())
	})
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.PublishOrderPlaced(context.Background(), sampleOrder()))
}
