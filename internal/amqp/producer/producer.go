package simpleproducer

import (
	"context"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("producer is not connected")

// Producer publishes persistent JSON messages to a single durable queue.
type Producer struct {
	name string
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(name string, conn *amqp.Connection) *Producer {
	return &Producer{name: name, conn: conn}
}

func (p *Producer) Connect() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("cannot open channel, %w", err)
	}

	_, err = ch.QueueDeclare(p.name, true, false, false, false, nil)
	if err != nil {
		ch.Close()

		return fmt.Errorf("cannot declare queue %s, %w", p.name, err)
	}

	p.ch = ch

	return nil
}

func (p *Producer) Publish(ctx context.Context, body []byte) error {
	if p.ch == nil {
		return ErrNotConnected
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := p.ch.Publish("", p.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("cannot publish to %s, %w", p.name, err)
	}

	return nil
}

func (p *Producer) Close() error {
	if p.ch == nil {
		return nil
	}

	return p.ch.Close()
}

// Discard is used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, []byte) error {
	return nil
}
