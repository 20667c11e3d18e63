package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsletter/internal/models"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	calls    int
	err      error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.calls++
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func testEvent() models.SubscriptionConfirmedEvent {
	return models.SubscriptionConfirmedEvent{
		SubscriberID: "2f1b7c4e-8c0d-4c55-9a43-1fa9f8e7a111",
		Email:        "ursula_le_guin@gmail.com",
		Name:         "le guin",
		ConfirmedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_PublishConfirmed(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "subscriptions")

	err := p.PublishConfirmed(context.Background(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, 1, ch.calls)
	assert.Equal(t, "subscriptions", ch.exchange)
	assert.Equal(t, RoutingKeyConfirmed, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got models.SubscriptionConfirmedEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, testEvent(), got)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := NewPublisher(ch, "subscriptions")

	err := p.PublishConfirmed(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.PublishConfirmed")
}

func TestPublisher_CanceledContext(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "subscriptions")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PublishConfirmed(ctx, testEvent())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ch.calls)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishConfirmed(context.Background(), testEvent()))
}
