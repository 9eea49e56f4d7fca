package handlers

import (
	"context"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// PricingHandler prices the SKUs the technical stage matched. A partial
// technical match still gets priced: the quote covers the matched subset.
type PricingHandler struct {
	catalog *Catalog
}

// NewPricingHandler creates a pricing lookup handler.
func NewPricingHandler(catalog *Catalog) *PricingHandler {
	return &PricingHandler{catalog: catalog}
}

// Handle builds line items from the analysis result and totals them.
func (h *PricingHandler) Handle(
	ctx context.Context,
	snapshot domain.Snapshot,
) (domain.StageResult, error) {
	analysis, ok := snapshot.StageResults[pipeline.StageKeyAnalysis]
	if !ok {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no analysis result to price",
		}, nil
	}

	var lineItems []map[string]any
	var total float64
	var unknown []string
	for _, sku := range matchedSKUs(analysis) {
		product, found := h.catalog.Lookup(sku)
		if !found {
			unknown = append(unknown, sku)
			continue
		}
		lineItems = append(lineItems, map[string]any{
			"sku":        product.SKU,
			"product":    product.Name,
			"unit_price": product.UnitPrice,
		})
		total += product.UnitPrice
	}

	if len(lineItems) == 0 {
		return domain.StageResult{
			Status:  domain.StageResultFailed,
			Message: "no matched SKU could be priced",
		}, nil
	}

	data := map[string]any{
		"line_items": lineItems,
		"total":      total,
	}
	if len(unknown) > 0 {
		data["unknown_skus"] = unknown
	}

	return domain.StageResult{Status: domain.StageResultCompleted, Data: data}, nil
}

// matchedSKUs reads the SKU list out of the analysis result data. The data
// arrives as native maps in process and as decoded JSON after a round trip
// through the repository; both shapes are handled.
func matchedSKUs(analysis domain.StageResult) []string {
	var skus []string

	appendSKU := func(entry map[string]any) {
		if sku, ok := entry["sku"].(string); ok {
			skus = append(skus, sku)
		}
	}

	switch matched := analysis.Data["matched"].(type) {
	case []map[string]any:
		for _, entry := range matched {
			appendSKU(entry)
		}
	case []any:
		for _, raw := range matched {
			if entry, ok := raw.(map[string]any); ok {
				appendSKU(entry)
			}
		}
	}
	return skus
}
