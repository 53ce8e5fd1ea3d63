// Package notify emits order state changes to the notification service over
// RabbitMQ. Delivery is fire-and-forget: a broker problem is logged and the
// settlement that triggered it is never rolled back.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *log.Logger
}

func NewPublisher(url, exchange string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, n domain.OrderNotification) {
	body, err := json.Marshal(n)
	if err != nil {
		p.logger.Printf("ERROR: marshal order notification %s: %v", n.OrderID, err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx,
		p.exchange,
		"orders.status."+n.NewStatus,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Printf("ERROR: publish order notification %s: %v", n.OrderID, err)
	}
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Disabled drops notifications, logging each one. Used when no broker is
// configured.
type Disabled struct {
	Logger *log.Logger
}

func (d Disabled) OrderStatusChanged(_ context.Context, n domain.OrderNotification) {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("notification (broker disabled): order %s -> %s", n.OrderNumber, n.NewStatus)
}
