package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/dto"
	"github.com/cuongbtq/translate-queue/shared/errs"
)

func respondError(c *gin.Context, status int, name, message string, details any) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:     name,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   details,
	})
}

// handleServiceError maps domain errors onto HTTP responses.
func (h *TranslationHandler) handleServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errs.As(err, &verr):
		respondError(c, http.StatusBadRequest, "Validation failed", verr.Error(), verr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not Found", "Translation request not found", nil)
	case errors.Is(err, domain.ErrAlreadyTerminal):
		respondError(c, http.StatusConflict, "Conflict", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, "Invalid transition", err.Error(), nil)
	case errors.Is(err, domain.ErrPublish):
		respondError(c, http.StatusInternalServerError, "Queue error", domain.QueueErrorMessage, nil)
	default:
		h.logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", nil)
	}
}
