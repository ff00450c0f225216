package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const userEventsQueue = "user.events"

// Publisher sends account lifecycle events to RabbitMQ. A nil Publisher
// (or one with an empty URL) silently drops events so the API keeps
// working without a broker in development.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for the given broker URL, or nil
// when the URL is empty.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{URL: url}
}

// Publish sends a UserEvent to the user.events queue. The function
// never panics; any error is logged and returned so the caller can
// choose to ignore it; event delivery must not fail the request that
// produced it. Messages are marked persistent.
func (p *Publisher) Publish(ctx context.Context, event UserEvent) error {
	if p == nil || p.URL == "" {
		return nil
	}
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		userEventsQueue, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(pubCtx,
		"",              // default exchange
		userEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
