package handler

import (
	"context"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/model"
	"github.com/cuongbtq/translate-queue/internal/api/service"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

// TranslationService is the application layer used by the handlers.
type TranslationService interface {
	Create(ctx context.Context, text, sourceLang, targetLang string) (*model.Translation, error)
	Get(ctx context.Context, requestID string) (*model.Translation, error)
	List(ctx context.Context, q service.ListQuery) (*service.ListResult, error)
	UpdateStatus(ctx context.Context, requestID string, in domain.StatusUpdateInput) (*model.Translation, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *logger.Logger
	Service TranslationService
	// BasePath prefixes every generated link, e.g. /api/v1/translations.
	BasePath string
}

// TranslationHandler handles translation HTTP requests
type TranslationHandler struct {
	logger   *logger.Logger
	service  TranslationService
	basePath string
}

func NewTranslationHandler(deps *Dependencies) *TranslationHandler {
	return &TranslationHandler{
		logger:   deps.Logger,
		service:  deps.Service,
		basePath: deps.BasePath,
	}
}
