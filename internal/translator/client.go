// Package translator calls a LibreTranslate compatible HTTP endpoint and
// applies the provider retry policy.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
)

const (
	DefaultMaxAttempts = 2
	DefaultBackoffBase = 2 * time.Second

	maxErrorBody = 4 << 10
)

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// Client translates text. It is safe for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	backoffBase time.Duration
	http        *http.Client
	logger      *logger.Logger
	metrics     *metrics.Collector
}

func New(cfg Config, log *logger.Logger, m *metrics.Collector) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		http:        &http.Client{Timeout: cfg.Timeout},
		logger:      log,
		metrics:     m,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type providerError struct {
	Error string `json:"error"`
}

// translateOnce performs a single provider call and classifies its failure.
func (c *Client) translateOnce(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.baseURL == "" {
		return "", &Error{Kind: KindUnavailable, Message: "Translate service is not configured"}
	}

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: NormalizeLanguageCode(sourceLang),
		Target: NormalizeLanguageCode(targetLang),
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", &Error{Kind: KindUnknown, Message: "Translate failed: encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: "Translate service URL is invalid", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Message: statusMessage(KindNetwork), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var perr providerError
		var cause error
		if json.Unmarshal(raw, &perr) == nil && perr.Error != "" {
			cause = errors.New(perr.Error)
		}
		return "", &Error{Kind: kind, StatusCode: resp.StatusCode, Message: statusMessage(kind), Err: cause}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Kind: KindUnknown, Message: "Invalid translate response", Err: err}
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return "", &Error{Kind: KindUnknown, Message: "Invalid translate response"}
	}
	return out.TranslatedText, nil
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("translate failed after %d attempts. Last error: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Translate calls the provider, retrying rate limits and network failures
// with exponential backoff. Other failures are returned after one attempt.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	log := logger.FromContext(ctx, c.logger)

	var (
		result   string
		attempts int
	)
	err := c.retry(ctx, func(ctx context.Context) (bool, error) {
		attempts++
		out, err := c.translateOnce(ctx, text, sourceLang, targetLang)
		if err != nil {
			c.metrics.RecordTranslatorAttempt(string(KindOf(err)))
			log.Warn("Translate attempt failed",
				slog.Int("attempt", attempts),
				slog.Int("max_attempts", c.maxAttempts),
				slog.String("kind", string(KindOf(err))),
				slog.Any("error", err),
			)
			var terr *Error
			return errors.As(err, &terr) && terr.Retryable(), err
		}
		c.metrics.RecordTranslatorAttempt("ok")
		result = out
		return false, nil
	})
	if err == nil {
		return result, nil
	}

	var terr *Error
	if errors.As(err, &terr) && terr.Retryable() {
		return "", &ExhaustedError{Attempts: attempts, Last: err}
	}
	return "", err
}
