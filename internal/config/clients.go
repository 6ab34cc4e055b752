package config

import (
	"time"

	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/postgresql"
	"github.com/cuongbtq/translate-queue/shared/rabbitmq"
)

func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:        c.Logging.Level,
		Format:       c.Logging.Format,
		Output:       c.Logging.Output,
		EnableSource: c.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
	}
}

func (c *Config) PostgreSQLConfig() *postgresql.Config {
	return &postgresql.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

func (c *Config) RabbitMQConfig() *rabbitmq.Config {
	r := c.RabbitMQ
	return &rabbitmq.Config{
		URL:                  r.URL,
		Host:                 r.Host,
		Port:                 r.Port,
		User:                 r.User,
		Password:             r.Password,
		VHost:                r.VHost,
		ExchangeName:         r.Exchange.Name,
		ExchangeType:         r.Exchange.Type,
		WorkQueue:            r.Queue.Name,
		WorkRoutingKey:       r.Queue.RoutingKey,
		DeadLetterQueue:      r.DeadLetter.Name,
		DeadLetterRoutingKey: r.DeadLetter.RoutingKey,
		RetryAttempts:        r.Connection.RetryAttempts,
		RetryInterval:        r.Connection.RetryInterval,
		Heartbeat:            r.Connection.Heartbeat,
		ConnectionTimeout:    r.Connection.ConnectionTimeout,
		ChannelPoolSize:      r.Publish.ChannelPoolSize,
		ConfirmTimeout:       r.Publish.ConfirmTimeout,
		PublishRetries:       r.Publish.RetryAttempts,
		PublishRetryDelay:    r.Publish.RetryInterval,
	}
}
