// Package service implements request ingestion and the status read/write
// operations behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/model"
	"github.com/cuongbtq/translate-queue/internal/api/storage"
	"github.com/cuongbtq/translate-queue/shared/errs"
	"github.com/cuongbtq/translate-queue/shared/jobmessage"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Config struct {
	Logger     *logger.Logger
	Store      Store
	Publisher  Publisher
	Metrics    *metrics.Collector
	RoutingKey string
	MaxRetries int
}

type TranslationService struct {
	logger     *logger.Logger
	store      Store
	publisher  Publisher
	metrics    *metrics.Collector
	routingKey string
	maxRetries int

	now   func() time.Time
	newID func() string
}

func New(cfg *Config) *TranslationService {
	routingKey := cfg.RoutingKey
	if routingKey == "" {
		routingKey = "job"
	}
	return &TranslationService{
		logger:     cfg.Logger,
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		routingKey: routingKey,
		maxRetries: cfg.MaxRetries,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Create validates, persists a QUEUED record and publishes its job message.
// When publishing fails the record is moved to FAILED with QUEUE_ERROR and an
// error matching domain.ErrPublish is returned.
func (s *TranslationService) Create(ctx context.Context, text, sourceLang, targetLang string) (*model.Translation, error) {
	in, err := domain.NormalizeCreateInput(text, sourceLang, targetLang)
	if err != nil {
		s.metrics.RecordRequest("rejected")
		return nil, err
	}

	now := s.now()
	t := &model.Translation{
		RequestID:  s.newID(),
		Text:       in.Text,
		SourceLang: in.SourceLang,
		TargetLang: in.TargetLang,
		Status:     string(domain.StatusQueued),
		QueuedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateTranslation(ctx, t); err != nil {
		return nil, errs.Wrap(err, "store translation")
	}

	log := s.logger.WithRequestID(t.RequestID)

	msg := jobmessage.New(t.RequestID, t.Text, t.SourceLang, t.TargetLang, s.maxRetries, now)
	pub, err := msg.Publishing()
	if err == nil {
		err = s.publisher.PublishWithRetry(ctx, s.routingKey, pub)
	}
	if err != nil {
		log.Error("Failed to publish translation job", slog.Any("error", err))
		s.metrics.RecordRequest("publish_failed")

		if _, uerr := s.store.ApplyStatusUpdate(context.WithoutCancel(ctx), t.RequestID, domain.QueueFailure{}, s.now()); uerr != nil {
			log.Error("Failed to record queue failure", slog.Any("error", uerr))
		}
		return nil, domain.NewPublishError(err)
	}

	log.Info("Translation queued",
		slog.String("source_lang", t.SourceLang),
		slog.String("target_lang", t.TargetLang),
	)
	s.metrics.RecordRequest("queued")
	return t, nil
}

func (s *TranslationService) Get(ctx context.Context, requestID string) (*model.Translation, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.store.GetTranslation(ctx, requestID)
}

// ListQuery selects one page of translations, newest first.
type ListQuery struct {
	Status     string
	SourceLang string
	TargetLang string
	PageSize   int
	Cursor     *storage.Cursor
}

type ListResult struct {
	Items    []model.Translation
	PageSize int
	// Next is nil on the last page.
	Next *storage.Cursor
}

func (s *TranslationService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, err := s.store.ListTranslations(ctx, storage.TranslationFilter{
		Status:     q.Status,
		SourceLang: q.SourceLang,
		TargetLang: q.TargetLang,
		PageSize:   pageSize,
		Cursor:     q.Cursor,
	})
	if err != nil {
		return nil, err
	}

	res := &ListResult{Items: rows, PageSize: pageSize}
	if len(rows) > pageSize {
		res.Items = rows[:pageSize]
		last := res.Items[pageSize-1]
		res.Next = &storage.Cursor{CreatedAt: last.CreatedAt, RequestID: last.RequestID}
	}
	return res, nil
}

// UpdateStatus applies a worker status callback.
func (s *TranslationService) UpdateStatus(ctx context.Context, requestID string, in domain.StatusUpdateInput) (*model.Translation, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, domain.ErrNotFound
	}
	u, err := domain.ParseStatusUpdate(in)
	if err != nil {
		return nil, err
	}

	t, err := s.store.ApplyStatusUpdate(ctx, requestID, u, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.WithRequestID(requestID).Info("Translation status updated",
		slog.String("status", t.Status),
		slog.Int("retry_count", t.RetryCount),
	)
	s.metrics.RecordStatusUpdate(t.Status)
	return t, nil
}
