/**
 * @description
 * This package publishes row-change events. The RabbitMQ producer pushes
 * each event to a durable topic exchange under a routing key of the form
 * `gull.changes.<table>.<user_id>`, so downstream consumers can bind to a
 * single table, a single user, or everything. A no-op fallback keeps the
 * service bootable when RabbitMQ is unavailable, and a fanout composes
 * the broker-facing producer with the in-process SSE broker.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// ChangeExchange is the durable topic exchange all change events go to.
const ChangeExchange = "gull.events"

// Publisher is the interface implemented by types that can publish
// row-change events.
type Publisher interface {
	PublishChange(ctx context.Context, event domain.ChangeEvent) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// FallbackPublisher is a minimal no-op publisher used when RabbitMQ is
// unavailable at startup.
type FallbackPublisher struct{}

func (p *FallbackPublisher) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	log.Printf("level=warn component=events mode=fallback msg=\"change publish skipped\" table=%s op=%s", event.Table, event.Op)
	return nil
}

func (p *FallbackPublisher) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer creates and returns a new EventProducer.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Use a bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// PublishChange sends a change event to the topic exchange.
func (p *EventProducer) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	if err := p.channel.ExchangeDeclare(
		ChangeExchange, // name
		"topic",        // type
		true,           // durable
		false,          // autoDelete
		false,          // internal
		false,          // noWait
		nil,            // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	routingKey := fmt.Sprintf("gull.changes.%s.%s", event.Table, event.UserID)
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(publishCtx,
		ChangeExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Fanout publishes each event to every wrapped publisher. A failure in
// one does not stop the others; the first error is returned.
type Fanout struct {
	Publishers []Publisher
}

func (f *Fanout) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	var firstErr error
	for _, p := range f.Publishers {
		if err := p.PublishChange(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Fanout) Close() {
	for _, p := range f.Publishers {
		p.Close()
	}
}
