// Package http provides HTTP handlers for work item queries and operator actions.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/httputil"
	customValidation "github.com/allisson/rfp-pipeline/internal/validation"
	"github.com/allisson/rfp-pipeline/internal/workitem/http/dto"
	workItemUseCase "github.com/allisson/rfp-pipeline/internal/workitem/usecase"
)

// WorkItemHandler handles HTTP requests for work item queries and the
// operator status override.
type WorkItemHandler struct {
	workItemUseCase workItemUseCase.UseCase
	logger          *slog.Logger
}

// NewWorkItemHandler creates a new work item handler with required dependencies.
func NewWorkItemHandler(useCase workItemUseCase.UseCase, logger *slog.Logger) *WorkItemHandler {
	return &WorkItemHandler{
		workItemUseCase: useCase,
		logger:          logger,
	}
}

// GetHandler retrieves a single work item with its stage results.
// GET /v1/work-items/:id
// Returns 200 OK with the work item.
func (h *WorkItemHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid work item id: %w", err), h.logger)
		return
	}

	item, err := h.workItemUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWorkItemToResponse(item))
}

// ListHandler retrieves work items with pagination, optionally filtered by status.
// GET /v1/work-items?status=qualified&offset=0&limit=50
// Returns 200 OK with the work item list.
func (h *WorkItemHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if statusStr := c.Query("status"); statusStr != "" {
		req := dto.UpdateStatusRequest{Status: statusStr}
		status, err := req.ParseStatus()
		if err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}

		items, err := h.workItemUseCase.ListByStatus(c.Request.Context(), status, offset, limit)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.MapWorkItemsToListResponse(items, len(items)))
		return
	}

	items, total, err := h.workItemUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWorkItemsToListResponse(items, total))
}

// UpdateStatusHandler applies an operator status override, such as marking a
// submitted item won or lost.
// PUT /v1/work-items/:id/status
// Returns 200 OK with the updated work item.
func (h *WorkItemHandler) UpdateStatusHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid work item id: %w", err), h.logger)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := req.ParseStatus()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.workItemUseCase.UpdateStatus(c.Request.Context(), id, status); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	item, err := h.workItemUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("work item status overridden",
		slog.String("work_item_id", id.String()),
		slog.String("status", string(status)),
	)

	c.JSON(http.StatusOK, dto.MapWorkItemToResponse(item))
}
