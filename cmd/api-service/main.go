package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cuongbtq/translate-queue/internal/api/handler"
	"github.com/cuongbtq/translate-queue/internal/api/router"
	"github.com/cuongbtq/translate-queue/internal/api/service"
	"github.com/cuongbtq/translate-queue/internal/api/storage"
	"github.com/cuongbtq/translate-queue/internal/config"
	"github.com/cuongbtq/translate-queue/shared/callbackauth"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
	"github.com/cuongbtq/translate-queue/shared/postgresql"
	"github.com/cuongbtq/translate-queue/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := postgresql.NewClient(cfg.PostgreSQLConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	if cfg.Database.AutoMigrate {
		if err := dbClient.Migrate(context.Background(), storage.Migrations()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize RabbitMQ client
	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	signer, err := callbackauth.NewSigner(cfg.Callback.Secret, cfg.Callback.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize callback auth: %w", err)
	}

	allowed, err := router.ParseCIDRs(cfg.Security.CallbackAllowedCIDRs)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(dbClient.DB().DB, cfg.Database.Database),
	)
	collector := metrics.NewCollector(registry)

	svc := service.New(&service.Config{
		Logger:     appLogger,
		Store:      storage.NewStorage(dbClient.DB()),
		Publisher:  rabbitClient,
		Metrics:    collector,
		RoutingKey: cfg.RabbitMQ.Queue.RoutingKey,
		MaxRetries: cfg.Worker.MaxRetries,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	deps := &router.Dependencies{
		Logger:      appLogger,
		ServiceName: cfg.App.Name,
		Handler: handler.NewTranslationHandler(&handler.Dependencies{
			Logger:   appLogger,
			Service:  svc,
			BasePath: router.TranslationsPath,
		}),
		Verifier:             signer,
		CallbackAllowedCIDRs: allowed,
		CORSAllowedOrigins:   cfg.Security.CORSAllowedOrigins,
		Checks: map[string]router.HealthChecker{
			"database": dbClient,
			"rabbitmq": rabbitClient,
		},
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler(registry)
	}

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
		slog.Int("callback_allowed_cidrs", len(allowed)),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}
