package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrNotConnected  = errors.New("not connected to RabbitMQ")
	ErrPublishNacked = errors.New("broker did not confirm publish")
)

// Client owns one AMQP connection, the declared topology and a pool of
// confirm-mode channels used for publishing and basic.get.
type Client struct {
	config    Config
	conn      *amqp.Connection
	pool      *channelPool[*amqp.Channel]
	logger    *slog.Logger
	connected atomic.Bool
}

// NewClient dials with retry, declares the topology and prepares the channel pool.
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	c := &Client{
		config: config.withDefaults(),
		logger: logger,
	}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ client: %w", err)
	}
	return c, nil
}

func (c *Client) connect() error {
	amqpConfig := amqp.Config{
		Heartbeat: c.config.Heartbeat,
		Locale:    "en_US",
	}
	if c.config.ConnectionTimeout > 0 {
		amqpConfig.Dial = amqp.DefaultDial(c.config.ConnectionTimeout)
	}

	var err error
	for attempt := 1; attempt <= c.config.RetryAttempts; attempt++ {
		c.logger.Info("Connecting to RabbitMQ",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.config.RetryAttempts),
		)

		c.conn, err = amqp.DialConfig(c.config.DialURL(), amqpConfig)
		if err == nil {
			break
		}

		c.logger.Error("Failed to connect to RabbitMQ",
			slog.Any("error", err),
			slog.Int("attempt", attempt),
		)
		if attempt < c.config.RetryAttempts {
			time.Sleep(c.config.RetryInterval)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", c.config.RetryAttempts, err)
	}

	setupCh, err := c.conn.Channel()
	if err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}
	if err := declareTopology(setupCh, &c.config); err != nil {
		_ = setupCh.Close()
		_ = c.conn.Close()
		return err
	}
	_ = setupCh.Close()

	c.pool = newChannelPool(c.config.ChannelPoolSize, c.openConfirmChannel)
	c.connected.Store(true)

	closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			c.logger.Error("RabbitMQ connection lost", slog.String("reason", amqpErr.Reason))
		}
		c.connected.Store(false)
	}()

	c.logger.Info("RabbitMQ client initialized",
		slog.String("exchange", c.config.ExchangeName),
		slog.String("work_queue", c.config.WorkQueue),
		slog.String("dead_letter_queue", c.config.DeadLetterQueue),
	)
	return nil
}

func (c *Client) openConfirmChannel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	return ch, nil
}

// Config returns the effective configuration after defaults.
func (c *Client) Config() Config {
	return c.config
}

// PublishFunc publishes one message with publisher confirms.
type PublishFunc func(ctx context.Context, routingKey string, msg amqp.Publishing) error

// Publish sends msg to the exchange with routingKey and waits for the broker
// confirm. The channel used is discarded on any failure.
func (c *Client) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return c.pool.with(ctx, func(ch *amqp.Channel) error {
		return c.publishOn(ctx, ch, routingKey, msg)
	})
}

// publishOn publishes on a confirm-mode channel the caller already holds.
func (c *Client) publishOn(ctx context.Context, ch *amqp.Channel, routingKey string, msg amqp.Publishing) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConfirmTimeout)
	defer cancel()

	confirm, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		c.config.ExchangeName, // exchange
		routingKey,            // routing key
		false,                 // mandatory
		false,                 // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting for publish confirm: %w", err)
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}

// PublishWithRetry retries Publish with exponential backoff.
func (c *Client) PublishWithRetry(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	maxRetries := c.config.PublishRetries
	baseDelay := c.config.PublishRetryDelay

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = c.Publish(ctx, routingKey, msg)
		if lastErr == nil {
			if attempt > 0 {
				c.logger.Info("Published message after retry",
					slog.Int("attempt", attempt+1),
					slog.String("routing_key", routingKey),
				)
			}
			return nil
		}
		if errors.Is(lastErr, ErrNotConnected) || attempt == maxRetries {
			break
		}

		delay := baseDelay * time.Duration(1<<uint(attempt))
		c.logger.Warn("Failed to publish message, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries),
			slog.Duration("retry_after", delay),
			slog.Any("error", lastErr),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("publish aborted: %w", ctx.Err())
		}
	}
	return fmt.Errorf("failed to publish message after %d attempts: %w", maxRetries+1, lastErr)
}

// WithChannel runs fn on a pooled channel. Deliveries fetched with Get must be
// acknowledged inside fn.
func (c *Client) WithChannel(ctx context.Context, fn func(*amqp.Channel) error) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return c.pool.with(ctx, fn)
}

// Fetch pulls up to limit messages from queue with basic.get on a single
// channel. fn decides per message: true acks it, false returns it to the
// queue once the fetch ends. publish sends on the same channel, so fn never
// needs a second pool slot. It returns the number of messages fetched.
func (c *Client) Fetch(ctx context.Context, queue string, limit int, fn func(d amqp.Delivery, publish PublishFunc) (bool, error)) (int, error) {
	fetched := 0
	err := c.WithChannel(ctx, func(ch *amqp.Channel) error {
		publish := func(ctx context.Context, routingKey string, msg amqp.Publishing) error {
			return c.publishOn(ctx, ch, routingKey, msg)
		}

		var held []amqp.Delivery
		defer func() {
			for _, d := range held {
				if err := d.Nack(false, true); err != nil {
					c.logger.Warn("Failed to return message to queue",
						slog.String("queue", queue),
						slog.Any("error", err),
					)
				}
			}
		}()

		for fetched < limit {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, ok, err := ch.Get(queue, false)
			if err != nil {
				return fmt.Errorf("failed to get message from %s: %w", queue, err)
			}
			if !ok {
				return nil
			}
			fetched++

			ack, err := fn(d, publish)
			if err != nil {
				held = append(held, d)
				return err
			}
			if !ack {
				held = append(held, d)
				continue
			}
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("failed to ack message: %w", err)
			}
		}
		return nil
	})
	return fetched, err
}

// QueueDepth returns the number of ready messages in queue.
func (c *Client) QueueDepth(ctx context.Context, queue string) (int, error) {
	var depth int
	err := c.WithChannel(ctx, func(ch *amqp.Channel) error {
		q, err := ch.QueueDeclarePassive(queue, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to inspect queue %s: %w", queue, err)
		}
		depth = q.Messages
		return nil
	})
	return depth, err
}

// Subscription is a dedicated consumer channel. It is never pooled.
type Subscription struct {
	ch         *amqp.Channel
	tag        string
	Deliveries <-chan amqp.Delivery
}

// Cancel stops delivery; unacknowledged messages are returned to the queue
// when the channel closes.
func (s *Subscription) Cancel() error {
	if err := s.ch.Cancel(s.tag, false); err != nil && !s.ch.IsClosed() {
		return fmt.Errorf("failed to cancel consumer: %w", err)
	}
	return nil
}

func (s *Subscription) Close() error {
	if s.ch.IsClosed() {
		return nil
	}
	return s.ch.Close()
}

// Consume opens a channel with the given prefetch and starts a manual-ack
// consumer on the work queue.
func (c *Client) Consume(consumerTag string, prefetch int) (*Subscription, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		c.config.WorkQueue, // queue
		consumerTag,        // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	c.logger.Info("Started consuming",
		slog.String("queue", c.config.WorkQueue),
		slog.String("consumer_tag", consumerTag),
		slog.Int("prefetch", prefetch),
	)
	return &Subscription{ch: ch, tag: consumerTag, Deliveries: deliveries}, nil
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.conn != nil && !c.conn.IsClosed()
}

// HealthCheck reports whether the connection is open.
func (c *Client) HealthCheck(context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

func (c *Client) Close() error {
	c.connected.Store(false)
	if c.pool != nil {
		c.pool.close()
	}
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Error("Failed to close RabbitMQ connection", slog.Any("error", err))
		return err
	}
	c.logger.Info("RabbitMQ connection closed")
	return nil
}
