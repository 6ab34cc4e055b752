package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/translate-queue/internal/config"
	"github.com/cuongbtq/translate-queue/internal/dlq"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/rabbitmq"
)

func main() {
	_ = godotenv.Load()

	if err := dlq.BuildCLI(connect).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func connect(_ context.Context, configPath string) (*dlq.Inspector, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Logs go to stderr so command output stays parseable.
	logCfg := cfg.LoggerConfig()
	logCfg.Output = "stderr"
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQConfig(), appLogger.Logger)
	if err != nil {
		_ = appLogger.Close()
		return nil, nil, fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	rc := rabbitClient.Config()
	insp := dlq.New(rabbitClient, rc.DeadLetterQueue, rc.WorkRoutingKey, appLogger)
	return insp, func() {
		_ = rabbitClient.Close()
		_ = appLogger.Close()
	}, nil
}
