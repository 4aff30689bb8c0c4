// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindStateConflict
	KindUpstream
)

// Error is a classified application error. Message is safe to show to clients;
// Err carries the underlying cause for server-side logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two application errors by code, so sentinels survive re-wrapping
// through Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindStateConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrDuplicateEmail      = &Error{Kind: KindValidation, Code: "duplicate_email", Message: "User already exists"}
	ErrInvalidCredentials  = &Error{Kind: KindAuthentication, Code: "invalid_credentials", Message: "Invalid credentials"}
	ErrInvalidToken        = &Error{Kind: KindAuthentication, Code: "invalid_token", Message: "Token is not valid, authorization denied"}
	ErrForbidden           = &Error{Kind: KindAuthorization, Code: "forbidden", Message: "Access denied"}
	ErrNotFound            = &Error{Kind: KindNotFound, Code: "not_found", Message: "Not found"}
	ErrInvalidState        = &Error{Kind: KindStateConflict, Code: "invalid_state", Message: "Operation not allowed in the current state"}
	ErrInsufficientHistory = &Error{Kind: KindValidation, Code: "insufficient_history", Message: "Not enough collection entries found"}
	ErrPaymentNotConfirmed = &Error{Kind: KindValidation, Code: "payment_not_confirmed", Message: "Payment has not been confirmed"}
	ErrPaymentReused       = &Error{Kind: KindStateConflict, Code: "payment_reused", Message: "Payment reference already used"}
	ErrAlreadyExists       = &Error{Kind: KindStateConflict, Code: "already_exists", Message: "Already exists"}
)

// Validation returns a validation error with a client-visible message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: msg}
}

// NotFound returns a not-found error naming the missing entity.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: ErrNotFound.Code, Message: msg}
}

// InvalidState returns a state conflict error with a specific message.
func InvalidState(msg string) *Error {
	return &Error{Kind: KindStateConflict, Code: ErrInvalidState.Code, Message: msg}
}

// Upstream wraps a store or gateway failure. The cause is kept for logs.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: "upstream", Message: msg, Err: err}
}

// Wrap attaches a cause to a sentinel while keeping its code and message.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

// As extracts the application error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus maps any error to a status code; unclassified errors are 500.
func HTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message a client may see. Upstream and
// unclassified errors collapse to a generic message.
func PublicMessage(err error) string {
	e, ok := As(err)
	if !ok || e.Kind == KindUpstream {
		return "Server error"
	}
	return e.Message
}
