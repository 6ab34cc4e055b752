package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are deployment variables that win over the YAML file.
type envOverrides struct {
	RabbitMQURL       string `envconfig:"RABBIT_MQ"`
	MaxRetries        *int   `envconfig:"MAX_RETRIES"`
	APIBaseURL        string `envconfig:"API_BASE_URL"`
	TranslatorBaseURL string `envconfig:"TRANSLATOR_BASE_URL"`
	TranslatorAPIKey  string `envconfig:"TRANSLATOR_API_KEY"`
	CallbackSecret    string `envconfig:"CALLBACK_SECRET"`
	DBPassword        string `envconfig:"DB_PASSWORD"`
	LogLevel          string `envconfig:"LOG_LEVEL"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&c.RabbitMQ.URL, env.RabbitMQURL)
	setIf(&c.Callback.BaseURL, env.APIBaseURL)
	setIf(&c.Translator.BaseURL, env.TranslatorBaseURL)
	setIf(&c.Translator.APIKey, env.TranslatorAPIKey)
	setIf(&c.Callback.Secret, env.CallbackSecret)
	setIf(&c.Database.Password, env.DBPassword)
	setIf(&c.Logging.Level, env.LogLevel)
	if env.MaxRetries != nil {
		c.Worker.MaxRetries = *env.MaxRetries
	}
	return nil
}
