package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError writes the status code matching err. Client errors echo the
// service message; server errors only expose fallbackMsg.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	status := apperrors.HTTPStatus(err)
	switch {
	case status < http.StatusInternalServerError:
		logger.Warn(fallbackMsg, slog.Int("status", status), slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
	case status == http.StatusServiceUnavailable:
		logger.Error(fallbackMsg, slog.Int("status", status), slog.String("error", err.Error()))
		c.Header("Retry-After", "1")
		c.JSON(status, dto.ErrorResponse{Error: fallbackMsg + ", please retry"})
	default:
		logger.Error(fallbackMsg, slog.Int("status", status), slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: fallbackMsg})
	}
}

// ownerFromContext reads the authenticated owner, answering 401 when it is missing.
func ownerFromContext(c *gin.Context, logger *slog.Logger) (string, bool) {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		logger.Error("Owner ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return ownerID, true
}
