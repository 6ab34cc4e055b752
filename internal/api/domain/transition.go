package domain

import "strings"

// StatusUpdate is one permitted status change. The concrete types carry
// exactly the fields their target status requires.
type StatusUpdate interface {
	Target() Status
	// Sources lists the statuses the update may be applied from.
	Sources() []Status
}

// ProcessingUpdate marks a job as picked up by a worker. Applying it to a
// PROCESSING record is allowed so a redelivered message can be reclaimed.
type ProcessingUpdate struct{}

type CompletedPayload struct {
	TranslatedText string
}

// FailedPayload ends a job that a worker could not translate. It increments
// the record's retry count.
type FailedPayload struct {
	ErrorMessage string
	ErrorCode    string
}

// QueueFailure is recorded by ingestion when the job message never reached the broker.
type QueueFailure struct{}

func (ProcessingUpdate) Target() Status { return StatusProcessing }
func (CompletedPayload) Target() Status { return StatusCompleted }
func (FailedPayload) Target() Status    { return StatusFailed }
func (QueueFailure) Target() Status     { return StatusFailed }

func (ProcessingUpdate) Sources() []Status { return []Status{StatusQueued, StatusProcessing} }
func (CompletedPayload) Sources() []Status { return []Status{StatusProcessing} }
func (FailedPayload) Sources() []Status    { return []Status{StatusProcessing} }
func (QueueFailure) Sources() []Status     { return []Status{StatusQueued} }

// CheckTransition returns a *TransitionError when u cannot be applied to a
// record currently in from.
func CheckTransition(from Status, u StatusUpdate) error {
	for _, s := range u.Sources() {
		if s == from {
			return nil
		}
	}
	return &TransitionError{From: from, To: u.Target()}
}

// StatusUpdateInput is the raw callback body.
type StatusUpdateInput struct {
	Status         string
	TranslatedText string
	ErrorMessage   string
	ErrorCode      string
}

// ParseStatusUpdate validates a callback body and builds the matching update.
// QUEUED, CANCELLED and unknown statuses are rejected.
func ParseStatusUpdate(in StatusUpdateInput) (StatusUpdate, error) {
	verr := &ValidationError{}
	status := Status(strings.ToUpper(strings.TrimSpace(in.Status)))

	switch status {
	case StatusProcessing:
		return ProcessingUpdate{}, nil
	case StatusCompleted:
		text := strings.TrimSpace(in.TranslatedText)
		if text == "" {
			verr.add("translatedText", "translatedText is required when status is COMPLETED")
			return nil, verr
		}
		return CompletedPayload{TranslatedText: in.TranslatedText}, nil
	case StatusFailed:
		msg := strings.TrimSpace(in.ErrorMessage)
		if msg == "" {
			verr.add("errorMessage", "errorMessage is required when status is FAILED")
			return nil, verr
		}
		code := strings.TrimSpace(in.ErrorCode)
		if code == "" {
			code = ErrorCodeTranslate
		}
		return FailedPayload{ErrorMessage: msg, ErrorCode: code}, nil
	case "":
		verr.add("status", "status is required")
	default:
		verr.add("status", "status must be one of PROCESSING, COMPLETED, FAILED")
	}
	return nil, verr
}
