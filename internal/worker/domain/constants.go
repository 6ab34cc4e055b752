package domain

// Statuses the worker reports through the status callback.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ErrorCodeTranslate is stored with FAILED records written by the worker.
const ErrorCodeTranslate = "TRANSLATE_ERROR"
