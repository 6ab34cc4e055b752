package dto

type CreateTranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type CreateTranslationResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
	Links     []Link `json:"_links"`
}

type ListTranslationsRequest struct {
	Status     string `form:"status"`
	SourceLang string `form:"sourceLang"`
	TargetLang string `form:"targetLang"`
	PageSize   int    `form:"page_size"`
	Cursor     string `form:"cursor"`
}

type ListTranslationsResponse struct {
	Translations []TranslationDTO `json:"translations"`
	Page         PageDTO          `json:"_page"`
	Links        []Link           `json:"_links"`
}

type PageDTO struct {
	Size       int    `json:"size"`
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

type TranslationDTO struct {
	RequestID      string  `json:"requestId"`
	OriginalText   string  `json:"originalText"`
	SourceLang     string  `json:"sourceLang"`
	TargetLang     string  `json:"targetLang"`
	Status         string  `json:"status"`
	TranslatedText *string `json:"translatedText,omitempty"`
	ErrorMessage   *string `json:"errorMessage,omitempty"`
	ErrorCode      *string `json:"errorCode,omitempty"`
	RetryCount     int     `json:"retryCount"`
	QueuedAt       string  `json:"queuedAt"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
	Links          []Link  `json:"_links"`
}

type UpdateStatusRequest struct {
	Status         string `json:"status"`
	TranslatedText string `json:"translatedText"`
	ErrorMessage   string `json:"errorMessage"`
	ErrorCode      string `json:"errorCode"`
}

type UpdateStatusResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	UpdatedAt string `json:"updatedAt"`
}

// Link is a hypermedia reference attached to resources and lists.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Details   any    `json:"details,omitempty"`
}
