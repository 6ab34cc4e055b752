// Package dlq inspects and replays messages parked on the dead-letter queue.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/translate-queue/shared/jobmessage"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/rabbitmq"
)

// Broker is the subset of the RabbitMQ client the inspector needs.
type Broker interface {
	Fetch(ctx context.Context, queue string, limit int, fn func(amqp.Delivery, rabbitmq.PublishFunc) (bool, error)) (int, error)
	QueueDepth(ctx context.Context, queue string) (int, error)
}

// Entry is one dead-lettered message as shown to an operator.
type Entry struct {
	RequestID    string          `json:"requestId"`
	Retries      int             `json:"retries"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	FailedAt     string          `json:"failedAt,omitempty"`
	SourceLang   string          `json:"sourceLang,omitempty"`
	TargetLang   string          `json:"targetLang,omitempty"`
	Body         json.RawMessage `json:"body,omitempty"`
	Raw          string          `json:"raw,omitempty"`
}

type Inspector struct {
	broker     Broker
	queue      string
	routingKey string
	logger     *logger.Logger
}

// New returns an inspector for queue that replays to routingKey.
func New(broker Broker, queue, routingKey string, log *logger.Logger) *Inspector {
	return &Inspector{broker: broker, queue: queue, routingKey: routingKey, logger: log}
}

func (i *Inspector) Queue() string { return i.queue }

// Depth returns the number of messages waiting in the dead-letter queue.
func (i *Inspector) Depth(ctx context.Context) (int, error) {
	return i.broker.QueueDepth(ctx, i.queue)
}

// Peek returns up to limit messages without removing them.
func (i *Inspector) Peek(ctx context.Context, limit int) ([]Entry, error) {
	entries := make([]Entry, 0, limit)
	_, err := i.broker.Fetch(ctx, i.queue, limit, func(d amqp.Delivery, _ rabbitmq.PublishFunc) (bool, error) {
		entries = append(entries, toEntry(d))
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to peek %s: %w", i.queue, err)
	}
	return entries, nil
}

// Replay moves up to limit messages back to the work queue with a fresh
// retry budget. When requestID is set only that request is moved. Malformed
// messages stay on the dead-letter queue. Each message is published on the
// channel it was fetched from and acked only after the broker confirms.
func (i *Inspector) Replay(ctx context.Context, limit int, requestID string) (int, error) {
	replayed := 0
	_, err := i.broker.Fetch(ctx, i.queue, limit, func(d amqp.Delivery, publish rabbitmq.PublishFunc) (bool, error) {
		msg, err := jobmessage.Decode(d.Body)
		if err != nil {
			i.logger.Warn("Skipping malformed dead-letter message",
				slog.Uint64("delivery_tag", d.DeliveryTag),
				slog.Any("error", err),
			)
			return false, nil
		}
		if requestID != "" && msg.RequestID() != requestID {
			return false, nil
		}

		pub := jobmessage.Redeliver(d, 0)
		delete(pub.Headers, jobmessage.HeaderErrorMessage)
		delete(pub.Headers, jobmessage.HeaderFailedAt)

		if err := publish(ctx, i.routingKey, pub); err != nil {
			return false, fmt.Errorf("failed to replay %s: %w", msg.RequestID(), err)
		}
		replayed++
		i.logger.WithRequestID(msg.RequestID()).Info("Replayed dead-letter message",
			slog.Int("previous_retries", jobmessage.Retries(d.Headers)),
		)
		return true, nil
	})
	return replayed, err
}

func toEntry(d amqp.Delivery) Entry {
	e := Entry{Retries: jobmessage.Retries(d.Headers)}
	e.ErrorMessage, _ = d.Headers[jobmessage.HeaderErrorMessage].(string)
	e.FailedAt, _ = d.Headers[jobmessage.HeaderFailedAt].(string)

	msg, err := jobmessage.Decode(d.Body)
	if err != nil {
		e.Raw = string(d.Body)
		return e
	}
	e.RequestID = msg.RequestID()
	e.SourceLang = msg.Data.SourceLang
	e.TargetLang = msg.Data.TargetLang
	e.Body = json.RawMessage(d.Body)
	return e
}
