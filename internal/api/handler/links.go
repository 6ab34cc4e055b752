package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/cuongbtq/translate-queue/internal/api/dto"
	"github.com/cuongbtq/translate-queue/internal/api/model"
)

func (h *TranslationHandler) resourceLinks(requestID string) []dto.Link {
	return []dto.Link{
		{Rel: "self", Href: h.basePath + "/" + requestID, Method: http.MethodGet},
		{Rel: "collection", Href: h.basePath, Method: http.MethodGet},
	}
}

func (h *TranslationHandler) listLinks(req dto.ListTranslationsRequest, nextCursor string) []dto.Link {
	query := func(cursor string) string {
		v := url.Values{}
		if req.Status != "" {
			v.Set("status", req.Status)
		}
		if req.SourceLang != "" {
			v.Set("sourceLang", req.SourceLang)
		}
		if req.TargetLang != "" {
			v.Set("targetLang", req.TargetLang)
		}
		if req.PageSize > 0 {
			v.Set("page_size", strconv.Itoa(req.PageSize))
		}
		if cursor != "" {
			v.Set("cursor", cursor)
		}
		if len(v) == 0 {
			return h.basePath
		}
		return h.basePath + "?" + v.Encode()
	}

	links := []dto.Link{
		{Rel: "self", Href: query(req.Cursor), Method: http.MethodGet},
		{Rel: "first", Href: query(""), Method: http.MethodGet},
		{Rel: "create", Href: h.basePath, Method: http.MethodPost},
	}
	if nextCursor != "" {
		links = append(links, dto.Link{Rel: "next", Href: query(nextCursor), Method: http.MethodGet})
	}
	return links
}

func (h *TranslationHandler) toDTO(t *model.Translation) dto.TranslationDTO {
	return dto.TranslationDTO{
		RequestID:      t.RequestID,
		OriginalText:   t.Text,
		SourceLang:     t.SourceLang,
		TargetLang:     t.TargetLang,
		Status:         t.Status,
		TranslatedText: t.TranslatedText,
		ErrorMessage:   t.ErrorMessage,
		ErrorCode:      t.ErrorCode,
		RetryCount:     t.RetryCount,
		QueuedAt:       formatTime(t.QueuedAt),
		CreatedAt:      formatTime(t.CreatedAt),
		UpdatedAt:      formatTime(t.UpdatedAt),
		Links:          h.resourceLinks(t.RequestID),
	}
}
