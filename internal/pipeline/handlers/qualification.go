package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// QualificationHandler decides whether a discovered work item is worth
// pursuing: the discovery confidence score must clear a threshold and the
// submission deadline must still be open.
type QualificationHandler struct {
	MinConfidence float64
	Now           func() time.Time
}

// NewQualificationHandler creates a qualification handler with the given
// confidence threshold.
func NewQualificationHandler(minConfidence float64) *QualificationHandler {
	return &QualificationHandler{
		MinConfidence: minConfidence,
		Now:           time.Now,
	}
}

// Handle qualifies or disqualifies the work item.
func (h *QualificationHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	if snapshot.Deadline != nil && snapshot.Deadline.Before(h.Now()) {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "submission deadline has passed",
			Data: map[string]any{
				"deadline": snapshot.Deadline.Format(time.RFC3339),
			},
		}, nil
	}

	if snapshot.ConfidenceScore < h.MinConfidence {
		return domain.StageResult{
			Status: domain.StageResultFailed,
			Message: fmt.Sprintf("confidence score %.2f below minimum %.2f",
				snapshot.ConfidenceScore, h.MinConfidence),
			Data: map[string]any{
				"confidence_score": snapshot.ConfidenceScore,
				"min_confidence":   h.MinConfidence,
			},
		}, nil
	}

	return domain.StageResult{
		Status: domain.StageResultCompleted,
		Data: map[string]any{
			"confidence_score": snapshot.ConfidenceScore,
		},
	}, nil
}
