package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "not found"
)

// Kind classifies a failure so callers can pick a retry policy without
// string-matching messages.
type Kind int

const (
	// KindConfiguration marks a deployment fault (e.g. a missing provider
	// credential). Not retryable until an operator fixes configuration.
	KindConfiguration Kind = iota + 1
	// KindProvider marks a failed remote model call (network, rate limit,
	// timeout, non-2xx). Retryable by the caller.
	KindProvider
	// KindSchemaViolation marks a model response that did not conform to the
	// required structured-output contract. Not retryable with identical input.
	KindSchemaViolation
	// KindValidation marks malformed caller-supplied input. Never retryable.
	KindValidation
	// KindInternal covers everything else.
	KindInternal
)

// Error wraps an underlying error with a kind, an HTTP status and a safe,
// user-facing message.
type Error struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}

// New creates a new Error with the provided information.
func New(err error, kind Kind, status int, message string) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// NewConfiguration marks a missing or broken deployment configuration.
func NewConfiguration(err error, message string) *Error {
	return New(err, KindConfiguration, http.StatusInternalServerError, message)
}

// NewProvider marks a failed remote model invocation.
func NewProvider(err error, message string) *Error {
	return New(err, KindProvider, http.StatusBadGateway, message)
}

// NewSchemaViolation marks a model response that broke the output contract.
func NewSchemaViolation(err error, message string) *Error {
	return New(err, KindSchemaViolation, http.StatusBadGateway, message)
}

// NewValidation marks malformed caller input.
func NewValidation(err error, message string) *Error {
	return New(err, KindValidation, http.StatusBadRequest, message)
}

// KindOf extracts the Kind from an error chain; KindInternal when none is set.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e.Kind != 0 {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
