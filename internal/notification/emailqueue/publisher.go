package emailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

// EmailPayload is what the out-of-process mail worker consumes.
type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Publisher enqueues outgoing emails onto a queue; sending is the worker's job.
type Publisher struct {
	channel *amqp091.Channel
	queue   string
}

func Connect(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *amqp091.Connection, queue string) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{channel: channel, queue: queue}, nil
}

func (p *Publisher) Send(ctx context.Context, to []string, subject, body string) error {
	payload, err := json.Marshal(EmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	message := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp091.Persistent,
	}

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, message); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// DevConsolePublisher logs outgoing mail instead of queueing it. Used when
// AMQP_URL is not configured.
type DevConsolePublisher struct{}

func NewDevConsolePublisher() *DevConsolePublisher { return &DevConsolePublisher{} }

func (p *DevConsolePublisher) Send(_ context.Context, to []string, subject, _ string) error {
	log.Printf("[DEV-EMAIL] to=%v subject=%q", to, subject)
	return nil
}
