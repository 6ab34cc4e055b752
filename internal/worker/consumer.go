package worker

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dispatch forwards deliveries to the worker pool. A delivery that cannot be
// handed over before shutdown is returned to the queue.
func (w *Worker) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, jobs chan<- amqp.Delivery) {
	w.logger.Info("Message dispatcher started", slog.String("consumer_tag", w.consumerTag))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			select {
			case jobs <- d:
				w.logger.Debug("Message dispatched to worker pool",
					slog.Uint64("delivery_tag", d.DeliveryTag),
					slog.String("message_id", d.MessageId),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching")
				if err := d.Nack(false, true); err != nil {
					w.logger.Error("Failed to NACK message on shutdown", slog.Any("error", err))
				}
				return
			}
		}
	}
}
