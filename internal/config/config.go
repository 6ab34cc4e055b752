package config

import (
	"fmt"
	"net/netip"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535

	DefaultMaxRetries          = 3
	DefaultTranslatorAttempts  = 2
	DefaultTranslatorBackoff   = 2 * time.Second
	DefaultCallbackTokenTTL    = 2 * time.Minute
	DefaultHTTPClientTimeout   = 10 * time.Second
	DefaultWorkerConcurrency   = 4
	DefaultWorkerPrefetchCount = 8
)

// Config represents the complete application configuration. The API and the
// worker read the same shape; each validates the sections it uses.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Logging    LoggingConfig    `yaml:"logging"`
	App        AppConfig        `yaml:"app"`
	Worker     WorkerConfig     `yaml:"worker"`
	Translator TranslatorConfig `yaml:"translator"`
	Callback   CallbackConfig   `yaml:"callback"`
	Security   SecurityConfig   `yaml:"security"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// RabbitMQConfig holds RabbitMQ connection and topology configuration
type RabbitMQConfig struct {
	URL        string           `yaml:"url"`
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queue      QueueConfig      `yaml:"queue"`
	DeadLetter QueueConfig      `yaml:"dead_letter"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
	Consumer   ConsumerConfig   `yaml:"consumer"`
}

type ExchangeConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type QueueConfig struct {
	Name       string `yaml:"name"`
	RoutingKey string `yaml:"routing_key"`
}

type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds publish retry and confirm settings
type PublishConfig struct {
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	ConfirmTimeout  time.Duration `yaml:"confirm_timeout"`
	ChannelPoolSize int           `yaml:"channel_pool_size"`
}

type ConsumerConfig struct {
	PrefetchCount int    `yaml:"prefetch_count"`
	Tag           string `yaml:"tag"`
}

type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// WorkerConfig holds worker service configuration
type WorkerConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	MaxRetries      int           `yaml:"max_retries"`
	JobTimeout      time.Duration `yaml:"job_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TranslatorConfig points at a LibreTranslate compatible endpoint.
type TranslatorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base"`
}

// CallbackConfig configures the worker-to-API status callback.
type CallbackConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SecurityConfig struct {
	// CallbackAllowedCIDRs restricts who may call the status callback route.
	CallbackAllowedCIDRs []string `yaml:"callback_allowed_cidrs"`
	CORSAllowedOrigins   []string `yaml:"cors_allowed_origins"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Load reads the configuration file, fills defaults and applies environment overrides.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = DefaultMaxRetries
	}
	if c.RabbitMQ.Consumer.PrefetchCount == 0 {
		c.RabbitMQ.Consumer.PrefetchCount = DefaultWorkerPrefetchCount
	}
	if c.Translator.MaxAttempts == 0 {
		c.Translator.MaxAttempts = DefaultTranslatorAttempts
	}
	if c.Translator.BackoffBase == 0 {
		c.Translator.BackoffBase = DefaultTranslatorBackoff
	}
	if c.Translator.Timeout == 0 {
		c.Translator.Timeout = DefaultHTTPClientTimeout
	}
	if c.Callback.TokenTTL == 0 {
		c.Callback.TokenTTL = DefaultCallbackTokenTTL
	}
	if c.Callback.Timeout == 0 {
		c.Callback.Timeout = DefaultHTTPClientTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.RabbitMQ.Queue.RoutingKey == "" {
		c.RabbitMQ.Queue.RoutingKey = "job"
	}
	if c.RabbitMQ.DeadLetter.RoutingKey == "" {
		c.RabbitMQ.DeadLetter.RoutingKey = "dlq"
	}
	if c.RabbitMQ.DeadLetter.Name == "" && c.RabbitMQ.Queue.Name != "" {
		c.RabbitMQ.DeadLetter.Name = c.RabbitMQ.Queue.Name + "_dlq"
	}
}

func validatePort(name string, port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("invalid %s port: %d (must be between %d and %d)", name, port, MinPort, MaxPort)
	}
	return nil
}

func (c *Config) validateBroker() error {
	if c.RabbitMQ.URL == "" {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required")
		}
		if err := validatePort("rabbitmq", c.RabbitMQ.Port); err != nil {
			return err
		}
	}
	if c.RabbitMQ.Exchange.Name == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}
	if c.RabbitMQ.Queue.Name == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}
	if c.RabbitMQ.Queue.RoutingKey == c.RabbitMQ.DeadLetter.RoutingKey {
		return fmt.Errorf("rabbitmq work and dead-letter routing keys must differ")
	}
	return nil
}

// ValidateAPIConfig checks the sections used by the API service.
func (c *Config) ValidateAPIConfig() error {
	if err := validatePort("server", c.Server.Port); err != nil {
		return err
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if err := validatePort("database", c.Database.Port); err != nil {
		return err
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if err := c.validateBroker(); err != nil {
		return err
	}
	if c.Callback.Secret == "" {
		return fmt.Errorf("callback secret is required")
	}
	for _, cidr := range c.Security.CallbackAllowedCIDRs {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("invalid callback allowed cidr %q: %w", cidr, err)
		}
	}
	return nil
}

// ValidateWorkerConfig checks the sections used by the worker service.
func (c *Config) ValidateWorkerConfig() error {
	if err := c.validateBroker(); err != nil {
		return err
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("worker max_retries must not be negative")
	}
	if c.Worker.JobTimeout <= 0 {
		return fmt.Errorf("worker job_timeout must be greater than 0")
	}
	if c.Worker.ShutdownTimeout <= 0 {
		return fmt.Errorf("worker shutdown_timeout must be greater than 0")
	}
	if c.Translator.MaxAttempts <= 0 {
		return fmt.Errorf("translator max_attempts must be greater than 0")
	}
	if c.Callback.BaseURL == "" {
		return fmt.Errorf("callback base_url is required")
	}
	if c.Callback.Secret == "" {
		return fmt.Errorf("callback secret is required")
	}
	if c.Metrics.Enabled {
		if err := validatePort("metrics", c.Metrics.Port); err != nil {
			return err
		}
	}
	return nil
}
