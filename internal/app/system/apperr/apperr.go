// Package apperr defines the typed errors returned by stores and domain
// operations. The HTTP layer maps each Kind to a status code or redirect.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for translation at the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindAuthorization
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Error is a classified error with a user-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound)
// works for wrapped, message-bearing errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Kind-only targets for errors.Is.
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrAuthentication = &Error{Kind: KindAuthentication}
)

func NotFound(msg string) error       { return &Error{Kind: KindNotFound, Message: msg} }
func Validation(msg string) error     { return &Error{Kind: KindValidation, Message: msg} }
func Authorization(msg string) error  { return &Error{Kind: KindAuthorization, Message: msg} }
func Authentication(msg string) error { return &Error{Kind: KindAuthentication, Message: msg} }

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal if it is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the user-safe message of err, or fallback.
func Message(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// HTTPStatus maps a Kind to its status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
