package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "orders_topic"

// Rabbit publishes order events to a durable topic exchange with routing
// keys of the form order.<status>.
type Rabbit struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel

	mu sync.Mutex
}

var _ Publisher = (*Rabbit)(nil)

func NewRabbit(url string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // args
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Rabbit{Conn: conn, Ch: ch}, nil
}

func RoutingKey(e OrderEvent) string {
	return fmt.Sprintf("order.%s", e.Status)
}

func (r *Rabbit) Publish(ctx context.Context, e OrderEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.Ch.PublishWithContext(
		ctx,
		Exchange,
		RoutingKey(e),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    e.Reference,
			Type:         e.Type,
			Timestamp:    e.At,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (r *Rabbit) Close() error {
	if r.Ch != nil {
		_ = r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}
