package handlers

import (
	"context"

	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// TechnicalHandler matches the work item's structured requirements against
// the product catalog. Requirements come from the ingestion payload's raw
// data under the "requirements" key, each with an "item" description.
type TechnicalHandler struct {
	catalog *Catalog
}

// NewTechnicalHandler creates a technical matching handler.
func NewTechnicalHandler(catalog *Catalog) *TechnicalHandler {
	return &TechnicalHandler{catalog: catalog}
}

// Handle produces requirement-wise product recommendations. All requirements
// matched is completed, some is partial (pricing still runs on the matched
// subset), none is failed.
func (h *TechnicalHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	requirements := extractRequirements(snapshot)
	if len(requirements) == 0 {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no structured requirements to match",
		}, nil
	}

	var matched []map[string]any
	var unmatched []string
	for _, requirement := range requirements {
		product, ok := h.catalog.Match(requirement)
		if !ok {
			unmatched = append(unmatched, requirement)
			continue
		}
		matched = append(matched, map[string]any{
			"requirement": requirement,
			"sku":         product.SKU,
			"product":     product.Name,
		})
	}

	data := map[string]any{
		"matched":   matched,
		"unmatched": unmatched,
	}

	switch {
	case len(matched) == 0:
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no requirement matched a catalog product",
			Data:    data,
		}, nil
	case len(unmatched) > 0:
		return domain.StageResult{
			Status:  domain.StageResultPartial,
			Message: "some requirements have no catalog match",
			Data:    data,
		}, nil
	default:
		return domain.StageResult{Status: domain.StageResultCompleted, Data: data}, nil
	}
}

// extractRequirements pulls requirement descriptions from the raw source
// payload, falling back to the item description when no structured
// requirements were ingested.
func extractRequirements(snapshot domain.Snapshot) []string {
	var requirements []string

	if raw, ok := snapshot.RawData["requirements"].([]any); ok {
		for _, entry := range raw {
			switch v := entry.(type) {
			case string:
				requirements = append(requirements, v)
			case map[string]any:
				if item, ok := v["item"].(string); ok {
					requirements = append(requirements, item)
				}
			}
		}
	}

	if len(requirements) == 0 && snapshot.Description != "" {
		requirements = append(requirements, snapshot.Description)
	}
	return requirements
}
