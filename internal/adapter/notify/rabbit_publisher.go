package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

const DefaultRabbitExchange = "library"

// RabbitPublisher sends events to a topic exchange with routing keys of the
// form "library.<event type>".
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultRabbitExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func RoutingKey(t domain.EventType) string {
	return "library." + string(t)
}

func (r *RabbitPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return r.ch.PublishWithContext(ctx, r.exchange, RoutingKey(event.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID.String(),
		Timestamp:   time.Now(),
		Body:        body,
	})
}

func (r *RabbitPublisher) Close() error {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
