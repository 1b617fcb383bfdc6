// Package apperr defines the error taxonomy shared by the stores and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of its message.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindDuplicateUsername
	KindDuplicateEmail
	KindConflict
	KindNotFound
	KindUnauthenticated
	KindInvalidCredentials
	KindInvalidToken
	KindExpiredToken
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidToken:
		return "invalid_token"
	case KindExpiredToken:
		return "expired_token"
	default:
		return "storage_error"
	}
}

// HTTPStatus is the response code every error of this kind maps to.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicateUsername, KindDuplicateEmail, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated, KindInvalidCredentials, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
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

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation error"}
	ErrDuplicateUsername  = &Error{Kind: KindDuplicateUsername, Message: "Username already registered"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "Email already registered"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Could not validate credentials"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Incorrect username or password"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "invalid token"}
	ErrExpiredToken       = &Error{Kind: KindExpiredToken, Message: "token has expired"}
	ErrStorage            = &Error{Kind: KindStorage, Message: "storage error"}
)

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Storage wraps an unexpected persistence failure. The message stays generic so
// driver details never reach the client.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "Internal server error", Err: err}
}

// KindOf reports the kind of err, treating anything unclassified as a storage failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).HTTPStatus()
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStorage {
		return e.Message
	}
	return "Internal server error"
}
