package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// ProposalHandler assembles a structured proposal document from the outputs
// of the preceding stages.
type ProposalHandler struct{}

// NewProposalHandler creates a proposal drafting handler.
func NewProposalHandler() *ProposalHandler {
	return &ProposalHandler{}
}

// Handle drafts the proposal text. Pricing output is required; without it
// there is nothing to quote.
func (h *ProposalHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	pricing, ok := snapshot.StageResults[pipeline.StageKeyPricing]
	if !ok {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no pricing result to draft from",
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Proposal: %s\n", snapshot.Title)
	if snapshot.Agency != "" {
		fmt.Fprintf(&b, "Prepared for: %s\n", snapshot.Agency)
	}
	b.WriteString("\nScope\n")
	if snapshot.Description != "" {
		b.WriteString(snapshot.Description)
		b.WriteString("\n")
	}

	b.WriteString("\nQuotation\n")
	for _, item := range pricingLineItems(pricing) {
		fmt.Fprintf(&b, "- %s (%s): %.2f\n", item.product, item.sku, item.unitPrice)
	}
	if total, ok := pricing.Data["total"].(float64); ok {
		fmt.Fprintf(&b, "Total: %.2f\n", total)
	}

	return domain.StageResult{
		Status: domain.StageResultCompleted,
		Data: map[string]any{
			"proposal_text": b.String(),
			"total":         pricing.Data["total"],
		},
	}, nil
}

type lineItem struct {
	sku       string
	product   string
	unitPrice float64
}

func pricingLineItems(pricing domain.StageResult) []lineItem {
	var items []lineItem

	appendItem := func(entry map[string]any) {
		item := lineItem{}
		item.sku, _ = entry["sku"].(string)
		item.product, _ = entry["product"].(string)
		item.unitPrice, _ = entry["unit_price"].(float64)
		items = append(items, item)
	}

	switch raw := pricing.Data["line_items"].(type) {
	case []map[string]any:
		for _, entry := range raw {
			appendItem(entry)
		}
	case []any:
		for _, v := range raw {
			if entry, ok := v.(map[string]any); ok {
				appendItem(entry)
			}
		}
	}
	return items
}
