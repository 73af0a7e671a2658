// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors; the tool boundary and the HTTP
// layer map them to structured payloads and status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates no candidate matched the query.
	KindNotFound
	// KindAmbiguous indicates several plausible candidates with no single winner.
	KindAmbiguous
	// KindResolution indicates the backend failed while resolving an entity.
	KindResolution
	// KindValidation indicates caller input failed the declared schema.
	KindValidation
	// KindWrite indicates an insert, update or delete failed at the store.
	KindWrite
	// KindConflict indicates a conflict with existing state (e.g. an illegal status transition).
	KindConflict
	// KindForbidden indicates the action is not allowed for the caller.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed request.
	KindBadRequest
	// KindTimeout indicates the caller's context was cancelled or timed out.
	KindTimeout
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindNotFound:     "not_found",
	KindAmbiguous:    "ambiguous",
	KindResolution:   "resolution_error",
	KindValidation:   "validation_error",
	KindWrite:        "write_error",
	KindConflict:     "conflict",
	KindForbidden:    "forbidden",
	KindUnauthorized: "unauthorized",
	KindBadRequest:   "bad_request",
	KindTimeout:      "timeout",
	KindInternal:     "internal",
}

// String returns the snake_case name used in tool payloads.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a domain error with a typed Kind.
type Error struct {
	Kind        Kind
	Message     string
	Op          string      // Operation that failed (optional)
	Err         error       // Underlying error (optional)
	Details     interface{} // Additional details for response (optional)
	Suggestions []string    // Ranked candidate labels for disambiguation (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	return StatusFor(e.Kind)
}

// StatusFor maps a kind to its HTTP status code.
func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAmbiguous, KindConflict:
		return http.StatusConflict
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindResolution, KindWrite:
		return http.StatusBadGateway
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindUnknown.
func ParseKind(name string) Kind {
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}
	return KindUnknown
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
// Context cancellation always wins over the requested kind.
func Wrap(kind Kind, message string, err error) *Error {
	if isContextErr(err) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// WithSuggestions returns the error with ranked suggestion labels attached.
func (e *Error) WithSuggestions(suggestions []string) *Error {
	e.Suggestions = suggestions
	return e
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Ambiguous creates an ambiguity error carrying the candidate labels.
func Ambiguous(message string, suggestions []string) *Error {
	return New(KindAmbiguous, message).WithSuggestions(suggestions)
}

// Resolution wraps a backend failure that happened during entity resolution.
func Resolution(message string, err error) *Error {
	return Wrap(KindResolution, message, err)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Write wraps a failed store mutation.
func Write(message string, err error) *Error {
	return Wrap(KindWrite, message, err)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error chain.
// Bare context errors report KindTimeout; anything else untyped is KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if isContextErr(err) {
		return KindTimeout
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// As returns the first *Error in the chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
