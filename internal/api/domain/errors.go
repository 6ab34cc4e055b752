package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cuongbtq/translate-queue/shared/errs"
)

var (
	ErrNotFound          = errors.New("translation not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyTerminal   = errors.New("translation already finished")
	ErrPublish           = errors.New("failed to publish translate to queue")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// PublishError reports that a job message never reached the broker. It
// matches ErrPublish.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return ErrPublish.Error() + ": " + e.Err.Error()
}

func (e *PublishError) Unwrap() error { return e.Err }

func (e *PublishError) Is(target error) bool { return target == ErrPublish }

func NewPublishError(cause error) error {
	return &PublishError{Err: errs.Wrap(cause, "publish translation job")}
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move translation from %s to %s", e.From, e.To)
}

// Is matches ErrAlreadyTerminal when the record is finished and
// ErrInvalidTransition otherwise.
func (e *TransitionError) Is(target error) bool {
	if e.From.IsTerminal() {
		return target == ErrAlreadyTerminal
	}
	return target == ErrInvalidTransition
}
