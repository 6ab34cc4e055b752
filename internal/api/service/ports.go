package service

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/model"
	"github.com/cuongbtq/translate-queue/internal/api/storage"
)

// Store persists translation records.
type Store interface {
	CreateTranslation(ctx context.Context, t *model.Translation) error
	GetTranslation(ctx context.Context, requestID string) (*model.Translation, error)
	ListTranslations(ctx context.Context, filter storage.TranslationFilter) ([]model.Translation, error)
	ApplyStatusUpdate(ctx context.Context, requestID string, u domain.StatusUpdate, now time.Time) (*model.Translation, error)
}

// Publisher delivers job messages to the broker.
type Publisher interface {
	PublishWithRetry(ctx context.Context, routingKey string, msg amqp.Publishing) error
}
