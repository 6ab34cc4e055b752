// Package statusclient reports job progress to the API status callback.
package statusclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cuongbtq/translate-queue/internal/worker/domain"
	"github.com/cuongbtq/translate-queue/shared/errs"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

const maxErrorBody = 4 << 10

// TokenSigner issues the bearer token for one request id.
type TokenSigner interface {
	Sign(requestID string) (string, error)
}

type Config struct {
	// BaseURL is the API root, e.g. http://translate-api:8080.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	signer  TokenSigner
	http    *http.Client
	logger  *logger.Logger
}

func New(cfg Config, signer TokenSigner, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		signer:  signer,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// Update sends u for requestID. A 409 maps to domain.ErrStatusConflict, other
// 4xx responses are permanent and 5xx or transport failures are transient.
func (c *Client) Update(ctx context.Context, requestID string, u domain.StatusUpdate) error {
	token, err := c.signer.Sign(requestID)
	if err != nil {
		return domain.Permanent(fmt.Errorf("failed to sign callback token: %w", err))
	}

	body, err := json.Marshal(u)
	if err != nil {
		return domain.Permanent(fmt.Errorf("failed to encode status update: %w", err))
	}

	endpoint := c.baseURL + "/api/v1/translations/" + url.PathEscape(requestID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Permanent(fmt.Errorf("failed to build status request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Transient(fmt.Errorf("network error: cannot reach %s: %w", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.FromContext(ctx, c.logger).Debug("Status callback accepted",
			slog.String("status", u.Status),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
		msg = eb.Message
	}
	apiErr := errs.Newf("API error: %d - %s", resp.StatusCode, msg)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %v", domain.ErrStatusConflict, apiErr)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return domain.Transient(apiErr)
	default:
		return domain.Permanent(apiErr)
	}
}
