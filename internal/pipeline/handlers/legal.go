package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// LegalHandler screens the drafted proposal and the source document for
// terms the business cannot accept (unlimited liability, exclusivity and the
// like). A hit rejects the item.
type LegalHandler struct {
	forbiddenTerms []string
}

// NewLegalHandler creates a legal review handler. With no explicit terms the
// default screening list applies.
func NewLegalHandler(forbiddenTerms []string) *LegalHandler {
	if len(forbiddenTerms) == 0 {
		forbiddenTerms = []string{
			"unlimited liability",
			"exclusivity",
			"liquidated damages without cap",
			"perpetual license",
		}
	}
	return &LegalHandler{forbiddenTerms: forbiddenTerms}
}

// Handle reviews the proposal text and the item description.
func (h *LegalHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	proposal, ok := snapshot.StageResults[pipeline.StageKeyProposal]
	if !ok {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no proposal to review",
		}, nil
	}

	text, _ := proposal.Data["proposal_text"].(string)
	document := strings.ToLower(text + "\n" + snapshot.Description)

	var findings []string
	for _, term := range h.forbiddenTerms {
		if strings.Contains(document, term) {
			findings = append(findings, term)
		}
	}

	if len(findings) > 0 {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: fmt.Sprintf("unacceptable terms found: %s", strings.Join(findings, ", ")),
			Data:    map[string]any{"findings": findings},
		}, nil
	}

	return domain.StageResult{
		Status: domain.StageResultCompleted,
		Data:   map[string]any{"reviewed_terms": len(h.forbiddenTerms)},
	}, nil
}
