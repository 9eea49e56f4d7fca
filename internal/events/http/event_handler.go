// Package http provides HTTP handlers for event queue administration.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/events/http/dto"
	eventsUseCase "github.com/allisson/rfp-pipeline/internal/events/usecase"
	"github.com/allisson/rfp-pipeline/internal/httputil"
)

// EventHandler handles HTTP requests for inspecting and recovering pipeline events.
type EventHandler struct {
	eventUseCase eventsUseCase.UseCase
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler with required dependencies.
func NewEventHandler(useCase eventsUseCase.UseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventUseCase: useCase,
		logger:       logger,
	}
}

// ListDeadLettersHandler retrieves dead-lettered events oldest first.
// GET /v1/events/dead-letters?offset=0&limit=50
// Returns 200 OK with the event list.
func (h *EventHandler) ListDeadLettersHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.ListDeadLetters(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// RequeueHandler moves a dead-lettered event back to pending.
// POST /v1/events/dead-letters/:id/requeue
// Returns 200 OK with the requeued event.
func (h *EventHandler) RequeueHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid event id: %w", err), h.logger)
		return
	}

	if err := h.eventUseCase.Requeue(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	event, err := h.eventUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}
