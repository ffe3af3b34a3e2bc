package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/salescrm/order-service/internal/obs"
)

// AMQPPublisher publishes lifecycle events to a topic exchange with
// routing keys of the form order.<action>.
type AMQPPublisher struct {
	ch       *amqp.Channel
	exchange string
}

// SetupAMQP dials the broker (with a short startup retry, brokers in
// containers come up slowly), opens a channel, and declares the durable
// topic exchange.
func SetupAMQP(url, exchange string) (*amqp.Connection, *AMQPPublisher, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		obs.Logger.Warn("amqp_dial_retry", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}

	return conn, &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	routingKey := fmt.Sprintf("order.%s", ev.Action)
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   fmt.Sprintf("%d", ev.Sequence),
			Timestamp:   ev.OccurredAt,
			Body:        body,
		},
	)
}
