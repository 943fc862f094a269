package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry POST /events without recording twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const idempotencyCleanupTimeout = 2 * time.Second

// eventHandler handles HTTP requests related to ledger events.
type eventHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	queryService  portssvc.QuerySvcFacade
	idempotency   portsrepo.IdempotencyStore
}

// RegisterEventRoutes registers routes related to events. idempotency may be nil,
// in which case the Idempotency-Key header is ignored.
func RegisterEventRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, queryService portssvc.QuerySvcFacade, idempotency portsrepo.IdempotencyStore) {
	h := &eventHandler{
		ledgerService: ledgerService,
		queryService:  queryService,
		idempotency:   idempotency,
	}

	events := rg.Group("/events")
	{
		events.POST("", h.recordEvent)
		events.GET("", h.listEvents)
		events.GET("/:eventID", h.getEvent)
		events.PATCH("/:eventID", h.amendEvent)
		events.DELETE("/:eventID", h.removeEvent)
	}
}

// recordEvent godoc
// @Summary Record an event
// @Description Records an income, expense or transfer and applies it to the account balances atomically.
// @Description Send an Idempotency-Key header to make retries safe.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   Idempotency-Key header string false "Client supplied retry key"
// @Param   event body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.EventResponse
// @Success 200 {object} dto.EventResponse "Replay of an earlier request with the same key"
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account or category not found"
// @Failure 409 {object} dto.ErrorResponse "A request with the same key is in flight"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable, retry"
// @Security BearerAuth
// @Router /events [post]
func (h *eventHandler) recordEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}

	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" && h.idempotency != nil {
		logger = logger.With(slog.String("idempotency_key", key))
		eventID, reserved, err := h.idempotency.Reserve(c.Request.Context(), ownerID, key)
		if err != nil {
			respondWithError(c, logger, apperrors.NewStorageError("reserving idempotency key", err), "Failed to record event")
			return
		}
		if !reserved {
			h.replay(c, logger, ownerID, eventID)
			return
		}
	} else {
		key = ""
	}

	event, err := h.ledgerService.RecordEvent(c.Request.Context(), req.ToDraft(ownerID))
	if err != nil {
		if key != "" {
			h.releaseKey(c.Request.Context(), logger, ownerID, key)
		}
		respondWithError(c, logger, err, "Failed to record event")
		return
	}

	if key != "" {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), idempotencyCleanupTimeout)
		if err := h.idempotency.Complete(ctx, ownerID, key, event.EventID); err != nil {
			logger.Warn("Failed to bind idempotency key to event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
		}
		cancel()
	}

	logger.Info("Event recorded successfully", slog.String("event_id", event.EventID))
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *eventHandler) replay(c *gin.Context, logger *slog.Logger, ownerID, eventID string) {
	if eventID == "" {
		logger.Warn("Duplicate request while the first one is still running")
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "A request with this Idempotency-Key is still being processed"})
		return
	}
	view, err := h.queryService.GetEvent(c.Request.Context(), ownerID, eventID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to load recorded event")
		return
	}
	logger.Info("Replaying recorded event", slog.String("event_id", eventID))
	c.JSON(http.StatusOK, dto.ToEventViewResponse(view))
}

func (h *eventHandler) releaseKey(ctx context.Context, logger *slog.Logger, ownerID, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyCleanupTimeout)
	defer cancel()
	if err := h.idempotency.Release(ctx, ownerID, key); err != nil {
		logger.Warn("Failed to release idempotency key", slog.String("error", err.Error()))
	}
}

// listEvents godoc
// @Summary List events
// @Description Lists the owner's events newest first, joined with account and category display data
// @Tags events
// @Produce  json
// @Param   from query string false "Lower bound of occurredAt (inclusive), date or RFC 3339"
// @Param   to query string false "Upper bound of occurredAt (exclusive), date or RFC 3339"
// @Param   q query string false "Case-insensitive search over description, account and category names"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEventsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /events [get]
func (h *eventHandler) listEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEvents", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}

	filter, err := params.ToFilter()
	if err != nil {
		respondWithError(c, logger, err, "Invalid query parameters")
		return
	}

	page, err := h.queryService.ListEvents(c.Request.Context(), ownerID, filter)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEventsResponse(page))
}

// getEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Security BearerAuth
// @Router /events/{eventID} [get]
func (h *eventHandler) getEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	eventID := c.Param("eventID")
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}

	view, err := h.queryService.GetEvent(c.Request.Context(), ownerID, eventID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("event_id", eventID)), err, "Failed to retrieve event")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventViewResponse(view))
}

// amendEvent godoc
// @Summary Amend an event
// @Description Applies a partial change to an event and moves its effect on the balances atomically
// @Tags events
// @Accept  json
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Param   event body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Event, account or category not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable, retry"
// @Security BearerAuth
// @Router /events/{eventID} [patch]
func (h *eventHandler) amendEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	eventID := c.Param("eventID")
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AmendEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("event_id", eventID))

	// The owner of an event never changes, so checking it before the atomic amend is sufficient.
	if _, err := h.queryService.GetEvent(c.Request.Context(), ownerID, eventID); err != nil {
		respondWithError(c, logger, err, "Failed to amend event")
		return
	}

	event, err := h.ledgerService.AmendEvent(c.Request.Context(), eventID, req.ToPatch())
	if err != nil {
		respondWithError(c, logger, err, "Failed to amend event")
		return
	}

	logger.Info("Event amended successfully")
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// removeEvent godoc
// @Summary Remove an event
// @Description Deletes an event and reverts its effect on the balances. Removing a missing event succeeds.
// @Tags events
// @Param   eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable, retry"
// @Security BearerAuth
// @Router /events/{eventID} [delete]
func (h *eventHandler) removeEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	eventID := c.Param("eventID")
	ownerID, ok := ownerFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("event_id", eventID))

	if _, err := h.queryService.GetEvent(c.Request.Context(), ownerID, eventID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		respondWithError(c, logger, err, "Failed to remove event")
		return
	}

	if err := h.ledgerService.RemoveEvent(c.Request.Context(), eventID); err != nil {
		respondWithError(c, logger, err, "Failed to remove event")
		return
	}

	logger.Info("Event removed successfully")
	c.Status(http.StatusNoContent)
}
