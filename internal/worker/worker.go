// Package worker consumes translation jobs from RabbitMQ, runs them through
// the translator and reports progress to the API.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/translate-queue/internal/worker/domain"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
	"github.com/cuongbtq/translate-queue/shared/rabbitmq"
)

// Translator turns text from one language into another.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// StatusReporter delivers status callbacks to the API.
type StatusReporter interface {
	Update(ctx context.Context, requestID string, u domain.StatusUpdate) error
}

// Publisher re-publishes job messages for retry and dead-lettering.
type Publisher interface {
	PublishWithRetry(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// Subscriber opens a manual-ack consumer on the work queue.
type Subscriber interface {
	Consume(consumerTag string, prefetch int) (*rabbitmq.Subscription, error)
}

// Config holds worker configuration
type Config struct {
	Logger     *logger.Logger
	Subscriber Subscriber
	Publisher  Publisher
	Translator Translator
	Status     StatusReporter
	Metrics    *metrics.Collector

	Concurrency          int
	PrefetchCount        int
	ConsumerTag          string
	MaxRetries           int
	JobTimeout           time.Duration
	RoutingKey           string
	DeadLetterRoutingKey string
}

// Worker represents the background translation worker
type Worker struct {
	logger     *logger.Logger
	subscriber Subscriber
	publisher  Publisher
	translator Translator
	status     StatusReporter
	metrics    *metrics.Collector

	concurrency   int
	prefetchCount int
	consumerTag   string
	maxRetries    int
	jobTimeout    time.Duration
	routingKey    string
	dlqRoutingKey string

	wg  sync.WaitGroup
	now func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	w := &Worker{
		logger:        cfg.Logger,
		subscriber:    cfg.Subscriber,
		publisher:     cfg.Publisher,
		translator:    cfg.Translator,
		status:        cfg.Status,
		metrics:       cfg.Metrics,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		consumerTag:   cfg.ConsumerTag,
		maxRetries:    cfg.MaxRetries,
		jobTimeout:    cfg.JobTimeout,
		routingKey:    cfg.RoutingKey,
		dlqRoutingKey: cfg.DeadLetterRoutingKey,
		now:           time.Now,
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.prefetchCount < w.concurrency {
		w.prefetchCount = w.concurrency
	}
	if w.routingKey == "" {
		w.routingKey = "job"
	}
	if w.dlqRoutingKey == "" {
		w.dlqRoutingKey = "dlq"
	}
	if w.jobTimeout <= 0 {
		w.jobTimeout = 2 * time.Minute
	}
	return w
}

// Start consumes until ctx is cancelled, then stops the consumer and waits
// for in-flight jobs to be settled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
		slog.Int("max_retries", w.maxRetries),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	sub, err := w.subscriber.Consume(w.consumerTag, w.prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.run(ctx, sub.Deliveries, func() {
		if err := sub.Cancel(); err != nil {
			w.logger.Warn("Failed to cancel consumer", slog.Any("error", err))
		}
	})

	if err := sub.Close(); err != nil {
		return fmt.Errorf("failed to close consumer channel: %w", err)
	}
	w.logger.Info("Worker stopped")
	return nil
}

// run dispatches deliveries to the pool until ctx is done or deliveries
// closes. In-flight jobs are not cancelled by ctx.
func (w *Worker) run(ctx context.Context, deliveries <-chan amqp.Delivery, stopConsuming func()) {
	jobs := make(chan amqp.Delivery)
	w.spawnWorkerPool(context.WithoutCancel(ctx), jobs)

	w.dispatch(ctx, deliveries, jobs)

	if stopConsuming != nil {
		stopConsuming()
	}
	close(jobs)
	w.wg.Wait()
}
