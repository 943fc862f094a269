package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// RegisterLedgerRoutes registers the ledger maintenance routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ledgerHandler{ledgerService: ledgerService}
	rg.GET("/ledger/audit", h.auditBalances)
}

// auditBalances godoc
// @Summary Audit account balances
// @Description Replays every event of the owner and compares the result with the stored balances.
// @Description A drift is reported with status 409 and the full report.
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.AuditResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.AuditResponse "Stored balances disagree with the event history"
// @Security BearerAuth
// @Router /ledger/audit [get]
func (h *ledgerHandler) auditBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}

	report, err := h.ledgerService.AuditBalances(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvariantViolation) && report != nil {
			logger.Error("Balance audit found drift", slog.Int("mismatches", len(report.Mismatches())))
			c.JSON(http.StatusConflict, dto.ToAuditResponse(report))
			return
		}
		respondWithError(c, logger, err, "Failed to audit balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToAuditResponse(report))
}
