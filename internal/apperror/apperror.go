// Package apperror defines the domain failures returned by services and the
// HTTP status each one maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorises an AppError.
type ErrorType int

const (
	// InternalError is anything the caller cannot fix.
	InternalError ErrorType = iota
	// NotFoundError means no row matched a search, get, update or delete.
	NotFoundError
	// RangeInvalidError means a lower bound exceeded its upper bound.
	RangeInvalidError
	// AlreadyExistsError means a create hit a uniqueness constraint.
	AlreadyExistsError
	// ValidationError means the request input was malformed.
	ValidationError
	// AuthError means credentials were wrong.
	AuthError
	// UnauthorizedError means the token is missing, invalid or not allowed.
	UnauthorizedError
)

// AppError carries a user-facing message and an optional underlying error
// that is never shown to the client.
type AppError struct {
	Type    ErrorType
	Message string
	// Details lists individual validation failures.
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode is the default HTTP status for the error type. Handlers may
// override it for NotFound depending on the method.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case NotFoundError:
		return http.StatusNotFound
	case RangeInvalidError, AlreadyExistsError, ValidationError, AuthError:
		return http.StatusBadRequest
	case UnauthorizedError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

func NewNotFound(message string) *AppError { return New(NotFoundError, message, nil) }

func NewRangeInvalid(message string, err error) *AppError {
	return New(RangeInvalidError, message, err)
}

func NewAlreadyExists(message string, err error) *AppError {
	return New(AlreadyExistsError, message, err)
}

func NewValidation(message string, details ...string) *AppError {
	return &AppError{Type: ValidationError, Message: message, Details: details}
}

func NewAuth(message string) *AppError { return New(AuthError, message, nil) }

func NewUnauthorized(err error) *AppError { return New(UnauthorizedError, "Unauthorized", err) }

func NewInternal(message string, err error) *AppError { return New(InternalError, message, err) }

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func is(err error, t ErrorType) bool {
	ae, ok := As(err)
	return ok && ae.Type == t
}

func IsNotFound(err error) bool      { return is(err, NotFoundError) }
func IsRangeInvalid(err error) bool  { return is(err, RangeInvalidError) }
func IsAlreadyExists(err error) bool { return is(err, AlreadyExistsError) }
func IsValidation(err error) bool    { return is(err, ValidationError) }
