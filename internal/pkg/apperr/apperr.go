package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code is a stable machine-readable error code returned to clients.
type Code string

const (
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnauthorized Code = "UNAUTHENTICATED"
	CodeInternal     Code = "INTERNAL"
)

// Error carries a code plus a human-readable message. Services return these;
// the handlers layer maps them to HTTP exactly once via Status.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status maps the code to an HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case CodeBadRequest:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func BadRequest(msg string) error { return &Error{Code: CodeBadRequest, Message: msg} }
func NotFound(msg string) error   { return &Error{Code: CodeNotFound, Message: msg} }
func Forbidden(msg string) error  { return &Error{Code: CodeForbidden, Message: msg} }

func Internal(msg string, cause error) error {
	return &Error{Code: CodeInternal, Message: msg, Cause: cause}
}

// From extracts an *Error, wrapping unknown errors as INTERNAL.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Message: "Internal Server Error", Cause: err}
}
