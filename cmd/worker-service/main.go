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
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cuongbtq/translate-queue/internal/config"
	"github.com/cuongbtq/translate-queue/internal/translator"
	"github.com/cuongbtq/translate-queue/internal/worker"
	"github.com/cuongbtq/translate-queue/internal/worker/statusclient"
	"github.com/cuongbtq/translate-queue/shared/callbackauth"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
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
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = startMetricsServer(cfg, registry, rabbitClient, appLogger)
	}

	consumerTag := cfg.RabbitMQ.Consumer.Tag
	if consumerTag == "" {
		host, _ := os.Hostname()
		consumerTag = fmt.Sprintf("%s-%s-%d", cfg.App.Name, host, os.Getpid())
	}

	// Create worker instance
	workerInstance := worker.NewWorker(&worker.Config{
		Logger:     appLogger,
		Subscriber: rabbitClient,
		Publisher:  rabbitClient,
		Translator: translator.New(translator.Config{
			BaseURL:     cfg.Translator.BaseURL,
			APIKey:      cfg.Translator.APIKey,
			Timeout:     cfg.Translator.Timeout,
			MaxAttempts: cfg.Translator.MaxAttempts,
			BackoffBase: cfg.Translator.BackoffBase,
		}, appLogger, collector),
		Status: statusclient.New(statusclient.Config{
			BaseURL: cfg.Callback.BaseURL,
			Timeout: cfg.Callback.Timeout,
		}, signer, appLogger),
		Metrics:              collector,
		Concurrency:          cfg.Worker.Concurrency,
		PrefetchCount:        cfg.RabbitMQ.Consumer.PrefetchCount,
		ConsumerTag:          consumerTag,
		MaxRetries:           cfg.Worker.MaxRetries,
		JobTimeout:           cfg.Worker.JobTimeout,
		RoutingKey:           cfg.RabbitMQ.Queue.RoutingKey,
		DeadLetterRoutingKey: cfg.RabbitMQ.DeadLetter.RoutingKey,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Start(ctx)
	}()

	appLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Worker error", slog.Any("error", err))
			return err
		}
		appLogger.Warn("Worker stopped unexpectedly")
	}

	// Cancel context to stop worker
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	select {
	case err := <-errChan:
		if err != nil {
			appLogger.Error("Worker stopped with error", slog.Any("error", err))
		} else {
			appLogger.Info("Worker stopped gracefully")
		}
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Metrics server shutdown failed", slog.Any("error", err))
		}
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// startMetricsServer serves /metrics and a broker-backed /health on the metrics port.
func startMetricsServer(cfg *config.Config, registry *prometheus.Registry, broker *rabbitmq.Client, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler(registry))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := broker.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	appLogger.Info("Metrics server listening",
		slog.String("address", srv.Addr),
		slog.String("path", cfg.Metrics.Path),
	)
	return srv
}
