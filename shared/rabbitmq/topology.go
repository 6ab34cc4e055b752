package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declareTopology declares the durable exchange, the work queue bound on the
// work routing key and the dead-letter queue bound on the dead-letter key.
// Re-declaring with identical arguments is a no-op on the broker.
func declareTopology(ch declarer, cfg *Config) error {
	err := ch.ExchangeDeclare(
		cfg.ExchangeName, // name
		cfg.ExchangeType, // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	bindings := []struct{ queue, key string }{
		{cfg.WorkQueue, cfg.WorkRoutingKey},
		{cfg.DeadLetterQueue, cfg.DeadLetterRoutingKey},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, cfg.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to %s: %w", b.queue, b.key, err)
		}
	}
	return nil
}
