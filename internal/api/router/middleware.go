package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/translate-queue/internal/api/dto"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

const RequestIDHeader = "X-Request-ID"

// TokenVerifier checks a callback bearer token against the request id in the path.
type TokenVerifier interface {
	Verify(token, requestID string) error
}

func abort(c *gin.Context, status int, name, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:     name,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RequestIDMiddleware propagates or assigns an X-Request-ID for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(),
			log.With(slog.String("http_request_id", c.GetString(RequestIDHeader)))))

		// Process request
		c.Next()

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
			slog.String("http_request_id", c.GetString(RequestIDHeader)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("HTTP Request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("HTTP Request", attrs...)
		default:
			log.Info("HTTP Request", attrs...)
		}

		for _, e := range c.Errors {
			log.Error("Request error",
				slog.String("error", e.Error()),
				slog.Uint64("type", uint64(e.Type)),
			)
		}
	}
}

// ParseCIDRs converts configured CIDR strings into prefixes.
func ParseCIDRs(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, raw := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid cidr %q: %w", raw, err)
		}
		prefixes = append(prefixes, p.Masked())
	}
	return prefixes, nil
}

// AllowCIDRs rejects peers outside prefixes with 403. IPv4-mapped IPv6
// addresses are matched as IPv4.
func AllowCIDRs(prefixes []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(prefixes) == 0 {
			c.Next()
			return
		}

		addr, err := netip.ParseAddr(c.ClientIP())
		if err == nil {
			addr = addr.Unmap()
			for _, p := range prefixes {
				if p.Contains(addr) {
					c.Next()
					return
				}
			}
		}
		abort(c, http.StatusForbidden, "Forbidden", "Caller is not allowed to update translation status")
	}
}

// CallbackAuth requires a bearer token issued for the :request_id in the path.
func CallbackAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized", "Missing bearer token")
			return
		}
		if err := v.Verify(strings.TrimSpace(token), c.Param("request_id")); err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized", "Invalid callback token")
			return
		}
		c.Next()
	}
}
