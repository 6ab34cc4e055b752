package router

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/translate-queue/internal/api/handler"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

const (
	// TranslationsPath is the collection route of the public API.
	TranslationsPath = "/api/v1/translations"

	readinessTimeout = 2 * time.Second
)

// HealthChecker is implemented by every backing client the API depends on.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds everything the router wires together.
type Dependencies struct {
	Logger      *logger.Logger
	ServiceName string
	Handler     *handler.TranslationHandler
	Verifier    TokenVerifier
	// CallbackAllowedCIDRs restricts the status callback route. Empty allows any peer.
	CallbackAllowedCIDRs []netip.Prefix
	CORSAllowedOrigins   []string
	// Checks are run by /health/ready, keyed by component name.
	Checks map[string]HealthChecker
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *Dependencies) *gin.Engine {
	r := gin.New()
	// ClientIP must come from the socket so the callback allow-list cannot be spoofed.
	_ = r.SetTrustedProxies(nil)

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": deps.ServiceName,
		})
	})
	r.GET("/health/ready", readinessHandler(deps.Checks))

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	h := deps.Handler

	translations := r.Group(TranslationsPath)
	{
		// POST /api/v1/translations - Queue a translation
		translations.POST("", h.CreateTranslation)

		// GET /api/v1/translations - List translations with filtering and pagination
		translations.GET("", h.ListTranslations)

		// GET /api/v1/translations/:request_id - Get translation status and result
		translations.GET("/:request_id", h.GetTranslation)

		// PUT /api/v1/translations/:request_id/status - Worker status callback
		translations.PUT("/:request_id/status",
			AllowCIDRs(deps.CallbackAllowedCIDRs),
			CallbackAuth(deps.Verifier),
			h.UpdateTranslationStatus,
		)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{"Location", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func readinessHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.HealthCheck(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{
			"status":     state,
			"components": components,
		})
	}
}
