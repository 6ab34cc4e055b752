package domain

// Status is the lifecycle state of a translation request.
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	// StatusCancelled is reserved; no operation produces it yet.
	StatusCancelled Status = "CANCELLED"
)

// Error codes stored alongside FAILED records.
const (
	ErrorCodeQueue     = "QUEUE_ERROR"
	ErrorCodeTranslate = "TRANSLATE_ERROR"
)

// QueueErrorMessage is recorded when a freshly created request could not be published.
const QueueErrorMessage = "Failed to publish translate to queue"

func (s Status) IsValid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
