// Package apperror defines the domain error taxonomy shared by services and
// the HTTP boundary. Every error carries an internal diagnostic (name,
// message, optional code) and a separate client-facing message so that
// sensitive detail never reaches the response body.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error with an HTTP mapping.
type Error struct {
	HTTPStatus    int
	Name          string
	Message       string // internal diagnostic, logged only
	Code          string // optional collaborator code (e.g. pg error code)
	ClientMessage string // safe to return to the caller
	Err           error  // wrapped cause, if any
}

// Error returns the internal diagnostic message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause attaches a wrapped cause and returns the error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithCode attaches a collaborator error code and returns the error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func New(status int, name, message, clientMessage string) *Error {
	return &Error{
		HTTPStatus:    status,
		Name:          name,
		Message:       message,
		ClientMessage: clientMessage,
	}
}

func BadRequest(message, clientMessage string) *Error {
	return New(http.StatusBadRequest, "BadRequest", message, clientMessage)
}

func Unauthorized(message, clientMessage string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", message, clientMessage)
}

func Forbidden(message, clientMessage string) *Error {
	return New(http.StatusForbidden, "Forbidden", message, clientMessage)
}

func NotFound(message, clientMessage string) *Error {
	return New(http.StatusNotFound, "NotFound", message, clientMessage)
}

// Conflict is returned on unique-constraint violations. The upstream API
// reported these as 400, and clients depend on that status.
func Conflict(message, clientMessage string) *Error {
	return New(http.StatusBadRequest, "Conflict", message, clientMessage)
}

func Internal(message, clientMessage string) *Error {
	return New(http.StatusInternalServerError, "InternalError", message, clientMessage)
}

// From extracts an *Error from err's chain. When err is not an *Error it
// returns a generic InternalError so unknown failures never leak detail.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error(), "Internal Server Error").WithCause(err)
}
