package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("amount must be positive"), http.StatusBadRequest},
		{"not found", NewNotFoundError("event %s", "e1"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("amend: %w", NewNotFoundError("event")), http.StatusNotFound},
		{"conflict", NewConflictError("account referenced"), http.StatusConflict},
		{"duplicate", fmt.Errorf("%w: id", ErrDuplicate), http.StatusConflict},
		{"storage", NewStorageError("failed to commit", cause), http.StatusServiceUnavailable},
		{"app error code", NewAppError(http.StatusTooManyRequests, "slow down", nil), http.StatusTooManyRequests},
		{"unknown", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewStorageError_WrapsBoth(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to insert event", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to insert event")
	assert.Contains(t, err.Error(), "disk full")

	bare := NewStorageError("scope already closed", nil)
	assert.ErrorIs(t, bare, ErrStorage)
}
