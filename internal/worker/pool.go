package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/translate-queue/internal/worker/domain"
	"github.com/cuongbtq/translate-queue/shared/errs"
	"github.com/cuongbtq/translate-queue/shared/jobmessage"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
)

// deadLetterStackLines caps the stack trace logged with a dead-lettered job.
const deadLetterStackLines = 12

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context, jobs <-chan amqp.Delivery) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i, jobs)
	}
	w.logger.Info("Worker pool spawned", slog.Int("worker_count", w.concurrency))
}

func (w *Worker) workerLoop(ctx context.Context, workerNum int, jobs <-chan amqp.Delivery) {
	defer w.wg.Done()

	log := w.logger.With(slog.Int("worker_num", workerNum))
	log.Debug("Worker goroutine started")

	for d := range jobs {
		w.handleDelivery(logger.IntoContext(ctx, log), d)
	}
	log.Debug("Worker goroutine stopping - jobs channel closed")
}

// handleDelivery processes one delivery and settles it exactly once: ack
// after success, a terminal outcome or a successful retry/dead-letter
// publish; nack with requeue when that publish fails.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	start := w.now()
	defer w.metrics.TrackInFlight()()

	log := logger.FromContext(ctx, w.logger)
	retries := jobmessage.Retries(d.Headers)

	msg, err := jobmessage.Decode(d.Body)
	if err != nil {
		log.Error("Malformed job message",
			slog.Any("error", err),
			slog.Uint64("delivery_tag", d.DeliveryTag),
		)
		pubErr := w.publishDeadLetter(ctx, d, retries, err)
		w.settle(log, d, metrics.OutcomeMalformed, start, pubErr)
		return
	}

	job := domain.NewJob(msg, retries)
	log = log.WithRequestID(job.RequestID).With(slog.Int("retries", retries))
	ctx = logger.IntoContext(ctx, log)

	err = w.processJob(ctx, job)
	outcome, pubErr := w.resolve(ctx, d, job, err)
	w.settle(log, d, outcome, start, pubErr)
}

// resolve applies the retry and dead-letter policy to the processing result.
func (w *Worker) resolve(ctx context.Context, d amqp.Delivery, job *domain.Job, err error) (string, error) {
	log := logger.FromContext(ctx, w.logger)

	switch {
	case err == nil:
		return metrics.OutcomeCompleted, nil

	case errors.Is(err, domain.ErrStatusConflict):
		log.Warn("Translation already settled, dropping message", slog.Any("error", err))
		return metrics.OutcomeConflict, nil

	case errs.Is(err, domain.ErrFailureRecorded):
		log.Warn("Translation failed permanently", slog.Any("error", err))
		return metrics.OutcomeFailed, nil

	case domain.IsPermanent(err):
		log.Error("Permanent error could not be recorded, dead-lettering",
			slog.Any("error", err),
			slog.Any("stack", errs.StackLines(err, deadLetterStackLines)),
		)
		return metrics.OutcomeDeadLettered, w.publishDeadLetter(ctx, d, job.Retries, err)

	case job.Retries < w.maxRetries:
		log.Warn("Job failed, scheduling retry",
			slog.Int("next_retry", job.Retries+1),
			slog.Int("max_retries", w.maxRetries),
			slog.Any("error", err),
		)
		if pubErr := w.publisher.PublishWithRetry(ctx, w.routingKey, jobmessage.Redeliver(d, job.Retries+1)); pubErr != nil {
			return metrics.OutcomeRetried, fmt.Errorf("failed to re-publish job: %w", pubErr)
		}
		return metrics.OutcomeRetried, nil

	default:
		exhausted := &domain.ExhaustedRetryError{Retries: job.Retries, Last: err}
		log.Error("Job exhausted its retries, dead-lettering",
			slog.Any("error", exhausted),
			slog.Any("stack", errs.StackLines(err, deadLetterStackLines)),
		)
		return metrics.OutcomeDeadLettered, w.publishDeadLetter(ctx, d, job.Retries, err)
	}
}

func (w *Worker) publishDeadLetter(ctx context.Context, d amqp.Delivery, retries int, reason error) error {
	msg := jobmessage.DeadLetter(d, retries, reason.Error(), w.now())
	if err := w.publisher.PublishWithRetry(ctx, w.dlqRoutingKey, msg); err != nil {
		return errs.Wrapf(err, "failed to publish %s to dead-letter queue", d.MessageId)
	}
	return nil
}

func (w *Worker) settle(log *logger.Logger, d amqp.Delivery, outcome string, start time.Time, pubErr error) {
	if pubErr != nil {
		log.Error("Returning message to queue", slog.Any("error", pubErr))
		if err := d.Nack(false, true); err != nil {
			log.Error("Failed to NACK message", slog.Any("error", err))
		}
		w.metrics.RecordMessage(metrics.OutcomeRequeued, w.now().Sub(start))
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("Failed to ACK message", slog.Any("error", err))
	}
	w.metrics.RecordMessage(outcome, w.now().Sub(start))
	log.Info("Message settled", slog.String("outcome", outcome))
}
