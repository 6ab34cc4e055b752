package domain

import "github.com/cuongbtq/translate-queue/shared/jobmessage"

// Job is one decoded delivery from the work queue.
type Job struct {
	RequestID  string
	Text       string
	SourceLang string
	TargetLang string
	// Retries is the x-retries header of the delivery, not the stored retry count.
	Retries int
}

func NewJob(m jobmessage.JobMessage, retries int) *Job {
	return &Job{
		RequestID:  m.RequestID(),
		Text:       m.Data.Text,
		SourceLang: m.Data.SourceLang,
		TargetLang: m.Data.TargetLang,
		Retries:    retries,
	}
}

// StatusUpdate is the body of a status callback.
type StatusUpdate struct {
	Status         string `json:"status"`
	TranslatedText string `json:"translatedText,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	ErrorCode      string `json:"errorCode,omitempty"`
}
