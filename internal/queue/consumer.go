// This file contains the background consumer that listens to the
// user.events queue and writes structured audit lines to
// logs/user-events.log. Password-reset events are where an SMTP
// integration would hook in; the audit line stands in for it here.
package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartConsumer connects to RabbitMQ, declares the user.events queue
// (durable), and starts consuming messages. Each message is appended to
// logs/user-events.log in a single-line, human-friendly format. The
// function runs a reconnect loop with backoff; it keeps running and
// logs any processing errors while rejecting the offending message so
// the server continues operating. Call it in its own goroutine.
func StartConsumer(url string) {
	if url == "" {
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("user-events: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("user-events: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("user-events: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(userEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(userEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("user-events: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var ev UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "user-events.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s event=%s user=%d email=%s\n",
		ev.OccurredAt, ev.Name, ev.UserID, ev.Email)
	if _, err := f.WriteString(line); err != nil {
		return err
	}
	return nil
}
