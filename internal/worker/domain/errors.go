package domain

import (
	"fmt"

	"github.com/cuongbtq/translate-queue/shared/errs"
)

var (
	// ErrStatusConflict is returned when the API already holds a terminal status for the job.
	ErrStatusConflict = errs.New("translation already has a terminal status")

	// ErrTransient marks failures that a later delivery may not hit.
	ErrTransient = errs.New("transient processing error")

	// ErrPermanent marks failures that no amount of redelivery can fix.
	ErrPermanent = errs.New("permanent processing error")

	// ErrFailureRecorded marks a permanent failure that was already stored as FAILED.
	ErrFailureRecorded = errs.New("failure recorded")
)

func Transient(err error) error {
	return errs.Mark(err, ErrTransient)
}

func Permanent(err error) error {
	return errs.Mark(err, ErrPermanent)
}

// IsPermanent reports whether err carries the permanent mark.
func IsPermanent(err error) bool {
	return errs.Is(err, ErrPermanent)
}

// ExhaustedRetryError is the dead-letter reason once the redelivery budget is spent.
type ExhaustedRetryError struct {
	Retries int
	Last    error
}

func (e *ExhaustedRetryError) Error() string {
	return fmt.Sprintf("retries exhausted after %d redeliveries: %v", e.Retries, e.Last)
}

func (e *ExhaustedRetryError) Unwrap() error { return e.Last }
