package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newsletter/internal/models"
)

// RoutingKeyConfirmed ключ маршрутизации события подтверждения подписки.
const RoutingKeyConfirmed = "subscription.confirmed"

// Channel часть *amqp.Channel, нужная издателю.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher отправляет события подписки в exchange.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher создаёт издателя поверх открытого канала.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// PublishConfirmed публикует событие subscription.confirmed.
func (p *Publisher) PublishConfirmed(ctx context.Context, event models.SubscriptionConfirmedEvent) error {
	const op = "rabbitmq.PublishConfirmed"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.ch.Publish(
		p.exchange,
		RoutingKeyConfirmed,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         RoutingKeyConfirmed,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NopPublisher используется, когда брокер не настроен.
type NopPublisher struct{}

// PublishConfirmed ничего не делает.
func (NopPublisher) PublishConfirmed(context.Context, models.SubscriptionConfirmedEvent) error {
	return nil
}
