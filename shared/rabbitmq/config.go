package rabbitmq

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultWorkRoutingKey       = "job"
	DefaultDeadLetterRoutingKey = "dlq"
)

// Config holds RabbitMQ connection and topology configuration
type Config struct {
	// URL, when set, takes precedence over the discrete connection fields.
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	VHost    string

	ExchangeName         string
	ExchangeType         string
	WorkQueue            string
	WorkRoutingKey       string
	DeadLetterQueue      string
	DeadLetterRoutingKey string

	RetryAttempts     int
	RetryInterval     time.Duration
	Heartbeat         time.Duration
	ConnectionTimeout time.Duration

	ChannelPoolSize   int
	ConfirmTimeout    time.Duration
	PublishRetries    int
	PublishRetryDelay time.Duration
}

// DialURL returns the AMQP URL to dial.
func (c *Config) DialURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
	}
	// An empty path selects the default "/" vhost.
	if vhost := strings.TrimPrefix(c.VHost, "/"); vhost != "" {
		u.Path = "/" + vhost
		u.RawPath = "/" + url.PathEscape(vhost)
	}
	return u.String()
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.ExchangeType == "" {
		out.ExchangeType = "direct"
	}
	if out.WorkRoutingKey == "" {
		out.WorkRoutingKey = DefaultWorkRoutingKey
	}
	if out.DeadLetterRoutingKey == "" {
		out.DeadLetterRoutingKey = DefaultDeadLetterRoutingKey
	}
	if out.DeadLetterQueue == "" && out.WorkQueue != "" {
		out.DeadLetterQueue = out.WorkQueue + "_dlq"
	}
	if out.RetryAttempts <= 0 {
		out.RetryAttempts = 1
	}
	if out.ChannelPoolSize <= 0 {
		out.ChannelPoolSize = 8
	}
	if out.ConfirmTimeout <= 0 {
		out.ConfirmTimeout = 5 * time.Second
	}
	if out.PublishRetryDelay <= 0 {
		out.PublishRetryDelay = 100 * time.Millisecond
	}
	return out
}
