package translator

import (
	"errors"
	"fmt"
)

// Kind classifies provider failures.
type Kind string

const (
	KindUnavailable Kind = "unavailable"
	KindBadRequest  Kind = "bad_request"
	KindRateLimited Kind = "rate_limited"
	KindNetwork     Kind = "network"
	KindUnknown     Kind = "unknown"
)

// Error is returned by every failed translation.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetwork
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind
	}
	return KindUnknown
}

// IsPermanent reports whether retrying the job cannot help.
func IsPermanent(err error) bool {
	switch KindOf(err) {
	case KindUnavailable, KindBadRequest:
		return true
	}
	return false
}

func classifyStatus(code int) Kind {
	switch {
	case code == 401 || code == 403 || code == 404:
		return KindUnavailable
	case code == 400 || code == 422:
		return KindBadRequest
	case code == 429:
		return KindRateLimited
	case code >= 500:
		return KindNetwork
	}
	return KindUnknown
}

func statusMessage(kind Kind) string {
	switch kind {
	case KindUnavailable:
		return "Translate service unavailable - check provider configuration"
	case KindBadRequest:
		return "Invalid translate request - check language codes"
	case KindRateLimited:
		return "Translate rate limit exceeded - please try again later"
	case KindNetwork:
		return "Network error - translate service temporarily unavailable"
	}
	return "Translate failed: unexpected provider response"
}
