// Package events publishes storefront domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xenking/gymshop/internal/domain/receipt"
	"github.com/xenking/gymshop/pkg/httpmiddleware"
)

const publishTimeout = 3 * time.Second

var _ receipt.Notifier = (*Publisher)(nil)

// Channel is the subset of *amqp.Channel used by Publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends ReceiptIssued events.
type Publisher struct {
	mu  sync.Mutex
	ch  Channel
	now func() time.Time
}

// Dial connects to the broker, declares the events exchange and returns a
// Publisher on a fresh channel together with the connection to close.
func Dial(url string) (*Publisher, *amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errors.Wrap(err, "open channel")
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, errors.Wrapf(err, "declare exchange %s", Exchange)
	}
	return NewPublisher(ch), conn, nil
}

// NewPublisher returns a Publisher on an already configured channel.
func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch, now: time.Now}
}

// ReceiptIssued publishes a ReceiptIssued event for r.
func (p *Publisher) ReceiptIssued(ctx context.Context, r *receipt.Receipt) error {
	ev := NewReceiptIssued(r, httpmiddleware.RequestIDFromContext(ctx), p.now())
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal ReceiptIssued")
	}
	return p.publish(ctx, ReceiptIssuedRoutingKey, ev.EventID, body)
}

func (p *Publisher) publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    p.now().UTC(),
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish %s", routingKey)
	}
	return nil
}

// Close closes the underlying channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
