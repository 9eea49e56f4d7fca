// Package http provides the HTTP handler for submitting discovered documents
// into the pipeline.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/rfp-pipeline/internal/httputil"
	ingestionUseCase "github.com/allisson/rfp-pipeline/internal/ingestion/usecase"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
	workItemDTO "github.com/allisson/rfp-pipeline/internal/workitem/http/dto"
)

// IngestionHandler handles HTTP requests for submitting source documents.
type IngestionHandler struct {
	ingestionUseCase ingestionUseCase.UseCase
	logger           *slog.Logger
}

// NewIngestionHandler creates a new ingestion handler with required dependencies.
func NewIngestionHandler(useCase ingestionUseCase.UseCase, logger *slog.Logger) *IngestionHandler {
	return &IngestionHandler{
		ingestionUseCase: useCase,
		logger:           logger,
	}
}

// IngestRequest contains a normalized source document for ingestion.
type IngestRequest struct {
	ExternalKey string                       `json:"external_key"`
	Payload     workItemDomain.SourcePayload `json:"payload"`
}

// CreateHandler ingests a discovered document as a work item and starts its
// pipeline run.
// POST /v1/work-items
// Returns 201 Created for a fresh item, 200 OK when the external key is
// already known (the existing item is returned unchanged).
func (h *IngestionHandler) CreateHandler(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	item, created, err := h.ingestionUseCase.Ingest(c.Request.Context(), ingestionUseCase.IngestInput{
		ExternalKey: req.ExternalKey,
		Payload:     req.Payload,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	statusCode := http.StatusCreated
	if !created {
		statusCode = http.StatusOK
	}
	c.JSON(statusCode, workItemDTO.MapWorkItemToResponse(item))
}
