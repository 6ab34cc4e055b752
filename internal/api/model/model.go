package model

import "time"

// Translation is one row of the translations table.
type Translation struct {
	RequestID      string    `db:"request_id"`
	Text           string    `db:"text"`
	SourceLang     string    `db:"source_lang"`
	TargetLang     string    `db:"target_lang"`
	Status         string    `db:"status"`
	TranslatedText *string   `db:"translated_text"`
	ErrorMessage   *string   `db:"error_message"`
	ErrorCode      *string   `db:"error_code"`
	RetryCount     int       `db:"retry_count"`
	QueuedAt       time.Time `db:"queued_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
