package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers. The HTTP layer maps kinds to status codes.
type ErrorKind string

const (
	KindInvalidRequest            ErrorKind = "invalid_request"
	KindNotFound                  ErrorKind = "not_found"
	KindInvalidState              ErrorKind = "invalid_state"
	KindVersionLimitExceeded      ErrorKind = "version_limit_exceeded"
	KindUpstreamGenerationFailure ErrorKind = "upstream_generation_failure"
	KindInternal                  ErrorKind = "internal"
)

// Error is the typed error returned by the decision workflow.
// Message is safe to show to end users; Err carries the underlying cause.
type Error struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func InvalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func VersionLimitExceeded(message string) *Error {
	return &Error{Kind: KindVersionLimitExceeded, Message: message}
}

// UpstreamGenerationFailure wraps a completion failure. The cause is kept for logs only.
func UpstreamGenerationFailure(message string, retryable bool, err error) *Error {
	return &Error{Kind: KindUpstreamGenerationFailure, Message: message, Retryable: retryable, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
