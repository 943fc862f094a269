package services

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogFailure logs err at a level matching its class: caller mistakes at warn, the rest at error.
func (s *BaseService) LogFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	switch apperrors.HTTPStatus(err) {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		args := append([]any{slog.String("error", err.Error())}, keyvals...)
		s.GetLogger(ctx).Warn(msg, args...)
	default:
		s.LogError(ctx, err, msg, keyvals...)
	}
}
