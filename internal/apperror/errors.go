// Package apperror defines the failure kinds returned by the auth core and
// the HTTP status each one maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusInvalidToken is the non-standard status used for token verification failures.
const StatusInvalidToken = 498

// GenericMessage replaces the message of non-operational errors outside development mode.
const GenericMessage = "Something went wrong!"

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindAlreadyExists
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidToken
	KindTooManyRequests
	KindNoContent
)

var kindNames = map[Kind]string{
	KindInternal:        "Internal",
	KindValidation:      "ValidationFailed",
	KindBadRequest:      "BadRequest",
	KindAlreadyExists:   "AlreadyExists",
	KindUnauthorized:    "Unauthorized",
	KindForbidden:       "Forbidden",
	KindNotFound:        "NotFound",
	KindInvalidToken:    "InvalidToken",
	KindTooManyRequests: "TooManyRequests",
	KindNoContent:       "NoContent",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidToken:
		return StatusInvalidToken
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindNoContent:
		return http.StatusNoContent
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single failure type that leaves the orchestration boundary.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds one message per failing input field. Only set for KindValidation.
	Fields map[string]string
	Err    error
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

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Operational reports whether the message is safe to show to end users.
func (e *Error) Operational() bool {
	return e.Kind != KindInternal
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps err for logging.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a 400 error carrying one message per failing field.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation errors", Fields: fields}
}

func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

func AlreadyExists(message string) *Error {
	return New(KindAlreadyExists, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// InvalidToken wraps a signature, format or expiry failure.
func InvalidToken(err error) *Error {
	return &Error{Kind: KindInvalidToken, Message: "Invalid or expired token", Err: err}
}

func TooManyRequests(message string) *Error {
	return New(KindTooManyRequests, message)
}

// NoContent signals a no-op request that is answered with a bare 204.
func NoContent() *Error {
	return New(KindNoContent, "No Content")
}

// Internal creates a 500 error. The message is only shown in development mode.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// From returns err as an *Error, wrapping unknown errors into KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(GenericMessage, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
