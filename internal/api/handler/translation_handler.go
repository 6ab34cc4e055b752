package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/dto"
	"github.com/cuongbtq/translate-queue/internal/api/service"
)

const queuedMessage = "Translate request has been queued for processing"

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// CreateTranslation handles POST /api/v1/translations
func (h *TranslationHandler) CreateTranslation(c *gin.Context) {
	var req dto.CreateTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", "Invalid request body", nil)
		return
	}

	t, err := h.service.Create(c.Request.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Location", h.basePath+"/"+t.RequestID)
	c.JSON(http.StatusAccepted, dto.CreateTranslationResponse{
		RequestID: t.RequestID,
		Status:    t.Status,
		Message:   queuedMessage,
		CreatedAt: formatTime(t.CreatedAt),
		Links:     h.resourceLinks(t.RequestID),
	})
}

// GetTranslation handles GET /api/v1/translations/:request_id
func (h *TranslationHandler) GetTranslation(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toDTO(t))
}

// ListTranslations handles GET /api/v1/translations
func (h *TranslationHandler) ListTranslations(c *gin.Context) {
	var req dto.ListTranslationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", "Invalid query parameters", nil)
		return
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	req.SourceLang = strings.ToLower(strings.TrimSpace(req.SourceLang))
	req.TargetLang = strings.ToLower(strings.TrimSpace(req.TargetLang))

	if req.Status != "" && !domain.Status(req.Status).IsValid() {
		respondError(c, http.StatusBadRequest, "Validation failed", "Unknown status filter", nil)
		return
	}

	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", "Invalid cursor", nil)
		return
	}

	res, err := h.service.List(c.Request.Context(), service.ListQuery{
		Status:     req.Status,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		PageSize:   req.PageSize,
		Cursor:     cursor,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	items := make([]dto.TranslationDTO, len(res.Items))
	for i := range res.Items {
		items[i] = h.toDTO(&res.Items[i])
	}
	next := EncodeCursor(res.Next)

	c.JSON(http.StatusOK, dto.ListTranslationsResponse{
		Translations: items,
		Page: dto.PageDTO{
			Size:       res.PageSize,
			Count:      len(items),
			NextCursor: next,
		},
		Links: h.listLinks(req, next),
	})
}

// UpdateTranslationStatus handles PUT /api/v1/translations/:request_id/status.
// Only the worker calls it.
func (h *TranslationHandler) UpdateTranslationStatus(c *gin.Context) {
	requestID := c.Param("request_id")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", "Invalid request body", nil)
		return
	}

	t, err := h.service.UpdateStatus(c.Request.Context(), requestID, domain.StatusUpdateInput{
		Status:         req.Status,
		TranslatedText: req.TranslatedText,
		ErrorMessage:   req.ErrorMessage,
		ErrorCode:      req.ErrorCode,
	})
	if err != nil {
		h.logger.Warn("Status update rejected",
			slog.String("request_id", requestID),
			slog.String("status", req.Status),
			slog.Any("error", err),
		)
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdateStatusResponse{
		RequestID: t.RequestID,
		Status:    t.Status,
		Message:   "Translate status updated to " + t.Status,
		UpdatedAt: formatTime(t.UpdatedAt),
	})
}
