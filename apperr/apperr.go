// Package apperr carries the error taxonomy shared by repositories and
// controllers, so every call site maps a failure to exactly one HTTP status.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	InvalidInput Kind = iota + 1
	Conflict
	InvalidState
	Forbidden
	TooManyAttempts
	Locked
	NotFound
	StoreTransient
	StoreFatal
)

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

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or StoreFatal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StoreFatal
}

// Message returns the user-facing reason, hiding internals of untyped errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a Kind to its response status. Conflict and InvalidState
// return 400 rather than 409/422, matching what the station front end expects.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput, Conflict, InvalidState:
		return fiber.StatusBadRequest
	case Forbidden:
		return fiber.StatusForbidden
	case TooManyAttempts:
		return fiber.StatusTooManyRequests
	case Locked:
		return fiber.StatusLocked
	case NotFound:
		return fiber.StatusNotFound
	case StoreTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Status is a convenience for controllers responding to a repository error.
func Status(err error) int {
	return KindOf(err).HTTPStatus()
}
