package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation clashes with the current state (e.g. deleting a referenced account).
var ErrConflict = errors.New("resource conflict")

// ErrStorage indicates an underlying persistence or transaction failure. Retryable.
var ErrStorage = errors.New("storage failure")

// ErrInvariantViolation indicates stored balances disagree with the event history.
var ErrInvariantViolation = errors.New("ledger invariant violation")

// ErrInternal is returned when a failure should not leak details to the caller.
var ErrInternal = errors.New("internal error")

// AppError pairs a response status code with the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError returns an error matching ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError returns an error matching ErrNotFound.
func NewNotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// NewConflictError returns an error matching ErrConflict.
func NewConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NewInvariantViolation returns an error matching ErrInvariantViolation.
func NewInvariantViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// NewStorageError wraps a persistence failure so that it matches both ErrStorage and cause.
func NewStorageError(message string, cause error) error {
	if cause == nil {
		return NewAppError(http.StatusServiceUnavailable, message, ErrStorage)
	}
	return NewAppError(http.StatusServiceUnavailable, message, fmt.Errorf("%w: %w", ErrStorage, cause))
}

// HTTPStatus maps an error from the service layer to a response status code.
func HTTPStatus(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
