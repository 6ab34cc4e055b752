package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/dto"
	"github.com/cuongbtq/translate-queue/internal/api/handler"
	"github.com/cuongbtq/translate-queue/internal/api/model"
	"github.com/cuongbtq/translate-queue/internal/api/service"
	"github.com/cuongbtq/translate-queue/internal/api/service/mocks"
	"github.com/cuongbtq/translate-queue/internal/api/storage"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

const (
	basePath  = "/api/v1/translations"
	requestID = "3f2b8c1e-5d4a-4c6b-9e7f-1a2b3c4d5e6f"
)

type TranslationHandlerSuite struct {
	suite.Suite
	router    *gin.Engine
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
}

func TestTranslationHandlerSuite(t *testing.T) {
	suite.Run(t, new(TranslationHandlerSuite))
}

func (s *TranslationHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(s.T())
	s.store = mocks.NewMockStore(ctrl)
	s.publisher = mocks.NewMockPublisher(ctrl)

	svc := service.New(&service.Config{
		Logger:     logger.NewNop(),
		Store:      s.store,
		Publisher:  s.publisher,
		MaxRetries: 3,
	})
	h := handler.NewTranslationHandler(&handler.Dependencies{
		Logger:   logger.NewNop(),
		Service:  svc,
		BasePath: basePath,
	})

	s.router = gin.New()
	s.router.POST(basePath, h.CreateTranslation)
	s.router.GET(basePath, h.ListTranslations)
	s.router.GET(basePath+"/:request_id", h.GetTranslation)
	s.router.PUT(basePath+"/:request_id/status", h.UpdateTranslationStatus)
}

func (s *TranslationHandlerSuite) perform(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *TranslationHandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *TranslationHandlerSuite) TestCreate() {
	s.Run("202 with request id", func() {
		s.store.EXPECT().CreateTranslation(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().PublishWithRetry(gomock.Any(), "job", gomock.Any()).Return(nil)

		rec := s.perform(http.MethodPost, basePath, dto.CreateTranslationRequest{
			Text: "Hello", SourceLang: "en", TargetLang: "pt",
		})

		s.Equal(http.StatusAccepted, rec.Code)
		var body dto.CreateTranslationResponse
		s.decode(rec, &body)
		s.NotEmpty(body.RequestID)
		s.Equal("QUEUED", body.Status)
		s.Equal("Translate request has been queued for processing", body.Message)
		s.Equal(basePath+"/"+body.RequestID, rec.Header().Get("Location"))
	})

	s.Run("400 lists every invalid field", func() {
		rec := s.perform(http.MethodPost, basePath, dto.CreateTranslationRequest{SourceLang: "en", TargetLang: "en"})

		s.Equal(http.StatusBadRequest, rec.Code)
		var body struct {
			Error   string              `json:"error"`
			Details []domain.FieldError `json:"details"`
		}
		s.decode(rec, &body)
		s.Equal("Validation failed", body.Error)
		s.Len(body.Details, 2)
	})

	s.Run("400 on malformed json", func() {
		req := httptest.NewRequest(http.MethodPost, basePath, bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("500 when the broker refuses", func() {
		s.store.EXPECT().CreateTranslation(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().PublishWithRetry(gomock.Any(), "job", gomock.Any()).Return(errors.New("channel closed"))
		s.store.EXPECT().ApplyStatusUpdate(gomock.Any(), gomock.Any(), domain.QueueFailure{}, gomock.Any()).
			Return(&model.Translation{Status: "FAILED"}, nil)

		rec := s.perform(http.MethodPost, basePath, dto.CreateTranslationRequest{
			Text: "Hello", SourceLang: "en", TargetLang: "pt",
		})

		s.Equal(http.StatusInternalServerError, rec.Code)
		var body dto.ErrorResponse
		s.decode(rec, &body)
		s.Equal(domain.QueueErrorMessage, body.Message)
	})
}

func (s *TranslationHandlerSuite) TestGet() {
	s.Run("200 with projection", func() {
		text := "Olá"
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		s.store.EXPECT().GetTranslation(gomock.Any(), requestID).Return(&model.Translation{
			RequestID: requestID, Text: "Hello", SourceLang: "en", TargetLang: "pt",
			Status: "COMPLETED", TranslatedText: &text, QueuedAt: now, CreatedAt: now, UpdatedAt: now,
		}, nil)

		rec := s.perform(http.MethodGet, basePath+"/"+requestID, nil)

		s.Equal(http.StatusOK, rec.Code)
		var body map[string]any
		s.decode(rec, &body)
		s.Equal("Hello", body["originalText"])
		s.Equal("Olá", body["translatedText"])
		s.NotContains(body, "errorMessage")
		s.Equal("2026-05-01T10:00:00Z", body["createdAt"])
	})

	s.Run("404 for unknown id", func() {
		s.store.EXPECT().GetTranslation(gomock.Any(), requestID).Return(nil, domain.ErrNotFound)

		rec := s.perform(http.MethodGet, basePath+"/"+requestID, nil)

		s.Equal(http.StatusNotFound, rec.Code)
		var body dto.ErrorResponse
		s.decode(rec, &body)
		s.Equal("Not Found", body.Error)
		s.NotEmpty(body.Timestamp)
	})

	s.Run("404 for malformed id", func() {
		rec := s.perform(http.MethodGet, basePath+"/nope", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *TranslationHandlerSuite) TestList() {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.Translation{
		{RequestID: "b", Status: "QUEUED", CreatedAt: now},
		{RequestID: "a", Status: "QUEUED", CreatedAt: now.Add(-time.Second)},
	}

	s.Run("next cursor and links", func() {
		s.store.EXPECT().ListTranslations(gomock.Any(), storage.TranslationFilter{Status: "QUEUED", PageSize: 1}).
			Return(rows, nil)

		rec := s.perform(http.MethodGet, basePath+"?status=queued&page_size=1", nil)

		s.Equal(http.StatusOK, rec.Code)
		var body dto.ListTranslationsResponse
		s.decode(rec, &body)
		s.Len(body.Translations, 1)
		s.NotEmpty(body.Page.NextCursor)

		rels := map[string]string{}
		for _, l := range body.Links {
			rels[l.Rel] = l.Href
		}
		s.Contains(rels, "next")
		s.Contains(rels["next"], "cursor=")
		s.Equal(basePath, rels["create"])

		cursor, err := handler.DecodeCursor(body.Page.NextCursor)
		s.Require().NoError(err)
		s.Equal("b", cursor.RequestID)
	})

	s.Run("unknown status filter", func() {
		rec := s.perform(http.MethodGet, basePath+"?status=PENDING", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("bad cursor", func() {
		rec := s.perform(http.MethodGet, basePath+"?cursor=***", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *TranslationHandlerSuite) TestUpdateStatus() {
	path := basePath + "/" + requestID + "/status"

	s.Run("200 on completed", func() {
		text := "Olá"
		s.store.EXPECT().ApplyStatusUpdate(gomock.Any(), requestID, domain.CompletedPayload{TranslatedText: "Olá"}, gomock.Any()).
			Return(&model.Translation{RequestID: requestID, Status: "COMPLETED", TranslatedText: &text}, nil)

		rec := s.perform(http.MethodPut, path, dto.UpdateStatusRequest{Status: "COMPLETED", TranslatedText: "Olá"})

		s.Equal(http.StatusOK, rec.Code)
		var body dto.UpdateStatusResponse
		s.decode(rec, &body)
		s.Equal("COMPLETED", body.Status)
	})

	s.Run("400 when failed lacks message", func() {
		rec := s.perform(http.MethodPut, path, dto.UpdateStatusRequest{Status: "FAILED"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("409 after terminal status", func() {
		s.store.EXPECT().ApplyStatusUpdate(gomock.Any(), requestID, gomock.Any(), gomock.Any()).
			Return(nil, &domain.TransitionError{From: domain.StatusCompleted, To: domain.StatusFailed})

		rec := s.perform(http.MethodPut, path, dto.UpdateStatusRequest{Status: "FAILED", ErrorMessage: "late"})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("400 for out of order update", func() {
		s.store.EXPECT().ApplyStatusUpdate(gomock.Any(), requestID, gomock.Any(), gomock.Any()).
			Return(nil, &domain.TransitionError{From: domain.StatusQueued, To: domain.StatusCompleted})

		rec := s.perform(http.MethodPut, path, dto.UpdateStatusRequest{Status: "COMPLETED", TranslatedText: "x"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("500 hides internal errors", func() {
		s.store.EXPECT().ApplyStatusUpdate(gomock.Any(), requestID, gomock.Any(), gomock.Any()).
			Return(nil, context.DeadlineExceeded)

		rec := s.perform(http.MethodPut, path, dto.UpdateStatusRequest{Status: "PROCESSING"})
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "deadline")
	})
}
