package handlers

import (
	"context"
	"fmt"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// ApprovalHandler stands in for the human final approval step. Quotes at or
// below the auto-approve limit pass; anything larger is rejected and must be
// resubmitted through the operator status override instead.
type ApprovalHandler struct {
	AutoApproveLimit float64
}

// NewApprovalHandler creates a final approval handler.
func NewApprovalHandler(autoApproveLimit float64) *ApprovalHandler {
	return &ApprovalHandler{AutoApproveLimit: autoApproveLimit}
}

// Handle approves or rejects the reviewed proposal.
func (h *ApprovalHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	proposal, ok := snapshot.StageResults[pipeline.StageKeyProposal]
	if !ok {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no proposal to approve",
		}, nil
	}

	total, _ := proposal.Data["total"].(float64)
	if h.AutoApproveLimit > 0 && total > h.AutoApproveLimit {
		return domain.StageResult{
			Status: domain.StageResultFailed,
			Message: fmt.Sprintf("quote total %.2f exceeds auto-approve limit %.2f",
				total, h.AutoApproveLimit),
			Data: map[string]any{"total": total, "auto_approve_limit": h.AutoApproveLimit},
		}, nil
	}

	return domain.StageResult{
		Status: domain.StageResultCompleted,
		Data:   map[string]any{"total": total},
	}, nil
}

// Config holds the tuning knobs of the built-in handlers.
type Config struct {
	MinConfidence    float64
	AutoApproveLimit float64
	ForbiddenTerms   []string
}

// DefaultHandlers builds the full stage handler registry keyed by stage key,
// ready to hand to the coordinator.
func DefaultHandlers(config Config) map[string]pipeline.Handler {
	catalog := DefaultCatalog()
	return map[string]pipeline.Handler{
		pipeline.StageKeyQualification: NewQualificationHandler(config.MinConfidence),
		pipeline.StageKeyAnalysis:      NewTechnicalHandler(catalog),
		pipeline.StageKeyPricing:       NewPricingHandler(catalog),
		pipeline.StageKeyProposal:      NewProposalHandler(),
		pipeline.StageKeyLegalReview:   NewLegalHandler(config.ForbiddenTerms),
		pipeline.StageKeyFinalApproval: NewApprovalHandler(config.AutoApproveLimit),
	}
}
