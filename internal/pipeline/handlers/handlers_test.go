package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

func tenderSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Title:           "Waterproofing of municipal depot basement and terrace",
		Description:     "Full waterproofing of the depot basement plus terrace coating",
		Agency:          "City of Springfield",
		SourceURL:       "https://procurement.example.gov/rfp/tender-42",
		ConfidenceScore: 0.87,
		RawData: map[string]any{
			"requirements": []any{
				map[string]any{"item": "basement membrane installation"},
				map[string]any{"item": "terrace coating with UV protection"},
				map[string]any{"item": "joint sealant for expansion cracks"},
			},
		},
		Stage:        domain.StageDiscovery,
		Status:       domain.StatusDiscovered,
		StageResults: map[string]domain.StageResult{},
	}
}

func TestQualificationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("QualifiesConfidentItem", func(t *testing.T) {
		handler := NewQualificationHandler(0.5)
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
		assert.Equal(t, 0.87, result.Data["confidence_score"])
	})

	t.Run("DisqualifiesLowConfidence", func(t *testing.T) {
		handler := NewQualificationHandler(0.9)
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "below minimum")
	})

	t.Run("DisqualifiesPassedDeadline", func(t *testing.T) {
		handler := NewQualificationHandler(0.5)
		handler.Now = func() time.Time {
			return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		}

		deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		snapshot := tenderSnapshot()
		snapshot.Deadline = &deadline

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "deadline has passed")
	})

	t.Run("OpenDeadlineQualifies", func(t *testing.T) {
		handler := NewQualificationHandler(0.5)
		handler.Now = func() time.Time {
			return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		}

		deadline := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		snapshot := tenderSnapshot()
		snapshot.Deadline = &deadline

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})
}

func TestTechnicalHandler(t *testing.T) {
	ctx := context.Background()
	handler := NewTechnicalHandler(DefaultCatalog())

	t.Run("MatchesAllRequirements", func(t *testing.T) {
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)

		matched, ok := result.Data["matched"].([]map[string]any)
		require.True(t, ok)
		assert.Len(t, matched, 3)
	})

	t.Run("PartialMatch", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.RawData["requirements"] = []any{
			map[string]any{"item": "basement membrane installation"},
			map[string]any{"item": "submarine hull painting"},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultPartial, result.Status)

		unmatched, ok := result.Data["unmatched"].([]string)
		require.True(t, ok)
		assert.Equal(t, []string{"submarine hull painting"}, unmatched)
	})

	t.Run("NoMatchFails", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.RawData["requirements"] = []any{"submarine hull painting"}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
	})

	t.Run("NoRequirementsFails", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.RawData = map[string]any{}
		snapshot.Description = ""

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "no structured requirements")
	})

	t.Run("FallsBackToDescription", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.RawData = map[string]any{}
		snapshot.Description = "basement waterproofing work"

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})

	t.Run("StringRequirements", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.RawData["requirements"] = []any{"terrace roof coating"}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})
}

func TestPricingHandler(t *testing.T) {
	ctx := context.Background()
	handler := NewPricingHandler(DefaultCatalog())

	t.Run("PricesMatchedSKUs", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyAnalysis] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data: map[string]any{
				"matched": []map[string]any{
					{"requirement": "basement membrane", "sku": "WP-BASE-100"},
					{"requirement": "joint sealant", "sku": "WP-SEAL-300"},
				},
			},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
		assert.Equal(t, 515.0, result.Data["total"])
	})

	t.Run("HandlesJSONRoundTrippedData", func(t *testing.T) {
		// After storage the matched list comes back as []any of map[string]any
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyAnalysis] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data: map[string]any{
				"matched": []any{
					map[string]any{"requirement": "basement membrane", "sku": "WP-BASE-100"},
				},
			},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
		assert.Equal(t, 420.0, result.Data["total"])
	})

	t.Run("NoAnalysisResultFails", func(t *testing.T) {
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "no analysis result")
	})

	t.Run("UnknownSKUsReported", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyAnalysis] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data: map[string]any{
				"matched": []map[string]any{
					{"sku": "WP-BASE-100"},
					{"sku": "WP-GONE-999"},
				},
			},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
		assert.Equal(t, []string{"WP-GONE-999"}, result.Data["unknown_skus"])
	})

	t.Run("NothingPriceableFails", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyAnalysis] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data:   map[string]any{"matched": []map[string]any{}},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
	})
}

func TestProposalHandler(t *testing.T) {
	ctx := context.Background()
	handler := NewProposalHandler()

	t.Run("DraftsProposal", func(t *testing.T) {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyPricing] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data: map[string]any{
				"line_items": []map[string]any{
					{"sku": "WP-BASE-100", "product": "Basement waterproofing membrane", "unit_price": 420.0},
				},
				"total": 420.0,
			},
		}

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)

		text, ok := result.Data["proposal_text"].(string)
		require.True(t, ok)
		assert.Contains(t, text, "Waterproofing of municipal depot")
		assert.Contains(t, text, "City of Springfield")
		assert.Contains(t, text, "WP-BASE-100")
		assert.Contains(t, text, "Total: 420.00")
		assert.Equal(t, 420.0, result.Data["total"])
	})

	t.Run("NoPricingFails", func(t *testing.T) {
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "no pricing result")
	})
}

func TestLegalHandler(t *testing.T) {
	ctx := context.Background()

	proposalWith := func(text string) domain.Snapshot {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyProposal] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data:   map[string]any{"proposal_text": text},
		}
		return snapshot
	}

	t.Run("ApprovesCleanProposal", func(t *testing.T) {
		handler := NewLegalHandler(nil)
		result, err := handler.Handle(ctx, proposalWith("Standard commercial terms apply."))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})

	t.Run("RejectsForbiddenTerm", func(t *testing.T) {
		handler := NewLegalHandler(nil)
		result, err := handler.Handle(ctx,
			proposalWith("Contractor accepts unlimited liability for all damages."))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "unlimited liability")
	})

	t.Run("ScreensDescriptionToo", func(t *testing.T) {
		handler := NewLegalHandler(nil)
		snapshot := proposalWith("Clean proposal text.")
		snapshot.Description = "This contract requires exclusivity for five years"

		result, err := handler.Handle(ctx, snapshot)
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
	})

	t.Run("CustomTerms", func(t *testing.T) {
		handler := NewLegalHandler([]string{"penalty clause"})
		result, err := handler.Handle(ctx,
			proposalWith("Contractor accepts unlimited liability."))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status,
			"custom term list replaces the default screening list")
	})

	t.Run("NoProposalFails", func(t *testing.T) {
		handler := NewLegalHandler(nil)
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
	})
}

func TestApprovalHandler(t *testing.T) {
	ctx := context.Background()

	proposalWithTotal := func(total float64) domain.Snapshot {
		snapshot := tenderSnapshot()
		snapshot.StageResults[pipeline.StageKeyProposal] = domain.StageResult{
			Status: domain.StageResultCompleted,
			Data:   map[string]any{"total": total},
		}
		return snapshot
	}

	t.Run("ApprovesWithinLimit", func(t *testing.T) {
		handler := NewApprovalHandler(100000)
		result, err := handler.Handle(ctx, proposalWithTotal(825.0))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})

	t.Run("RejectsAboveLimit", func(t *testing.T) {
		handler := NewApprovalHandler(500)
		result, err := handler.Handle(ctx, proposalWithTotal(825.0))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
		assert.Contains(t, result.Message, "exceeds auto-approve limit")
	})

	t.Run("ZeroLimitApprovesEverything", func(t *testing.T) {
		handler := NewApprovalHandler(0)
		result, err := handler.Handle(ctx, proposalWithTotal(9999999.0))
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultCompleted, result.Status)
	})

	t.Run("NoProposalFails", func(t *testing.T) {
		handler := NewApprovalHandler(100000)
		result, err := handler.Handle(ctx, tenderSnapshot())
		require.NoError(t, err)
		assert.Equal(t, domain.StageResultFailed, result.Status)
	})
}

func TestCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("Lookup", func(t *testing.T) {
		product, ok := catalog.Lookup("WP-BASE-100")
		require.True(t, ok)
		assert.Equal(t, "Basement waterproofing membrane", product.Name)

		_, ok = catalog.Lookup("WP-GONE-999")
		assert.False(t, ok)
	})

	t.Run("MatchIsCaseInsensitive", func(t *testing.T) {
		product, ok := catalog.Match("BASEMENT Membrane Installation")
		require.True(t, ok)
		assert.Equal(t, "WP-BASE-100", product.SKU)
	})

	t.Run("MatchIsDeterministic", func(t *testing.T) {
		// "joint sealant for the terrace" hits both the terrace and sealant
		// products; insertion order decides
		product, ok := catalog.Match("joint sealant for the terrace")
		require.True(t, ok)
		assert.Equal(t, "WP-TERR-200", product.SKU)
	})
}

func TestDefaultHandlers(t *testing.T) {
	handlers := DefaultHandlers(Config{
		MinConfidence:    0.5,
		AutoApproveLimit: 100000,
	})

	for _, transition := range pipeline.DefaultTransitions() {
		assert.Contains(t, handlers, transition.StageKey,
			"every transition needs a registered handler")
	}
}

// TestFullPipelineScenario chains all six handlers over one work item the way
// the consumers would, carrying each stage result into the next snapshot.
func TestFullPipelineScenario(t *testing.T) {
	ctx := context.Background()
	handlers := DefaultHandlers(Config{
		MinConfidence:    0.5,
		AutoApproveLimit: 100000,
	})

	snapshot := tenderSnapshot()
	stageOrder := []string{
		pipeline.StageKeyQualification,
		pipeline.StageKeyAnalysis,
		pipeline.StageKeyPricing,
		pipeline.StageKeyProposal,
		pipeline.StageKeyLegalReview,
		pipeline.StageKeyFinalApproval,
	}

	for _, stageKey := range stageOrder {
		result, err := handlers[stageKey].Handle(ctx, snapshot)
		require.NoError(t, err, "stage %s", stageKey)
		require.NotEqual(t, domain.StageResultFailed, result.Status,
			"stage %s should not fail for this tender", stageKey)
		snapshot.StageResults[stageKey] = result
	}

	// The proposal quotes all three matched products
	pricing := snapshot.StageResults[pipeline.StageKeyPricing]
	assert.Equal(t, 825.0, pricing.Data["total"], "420 + 310 + 95")

	proposal := snapshot.StageResults[pipeline.StageKeyProposal]
	text, _ := proposal.Data["proposal_text"].(string)
	assert.Contains(t, text, "WP-BASE-100")
	assert.Contains(t, text, "WP-TERR-200")
	assert.Contains(t, text, "WP-SEAL-300")
	assert.Contains(t, text, "Total: 825.00")
}

// TestLegalRejectionScenario runs the same chain for a tender whose terms fail
// the legal screen: every stage through the proposal completes, legal review
// fails, and final approval never runs.
func TestLegalRejectionScenario(t *testing.T) {
	ctx := context.Background()
	handlers := DefaultHandlers(Config{
		MinConfidence:    0.5,
		AutoApproveLimit: 100000,
	})

	snapshot := tenderSnapshot()
	snapshot.Description += ". Contractor accepts unlimited liability for water damage"

	for _, stageKey := range []string{
		pipeline.StageKeyQualification,
		pipeline.StageKeyAnalysis,
		pipeline.StageKeyPricing,
		pipeline.StageKeyProposal,
	} {
		result, err := handlers[stageKey].Handle(ctx, snapshot)
		require.NoError(t, err, "stage %s", stageKey)
		require.NotEqual(t, domain.StageResultFailed, result.Status, "stage %s", stageKey)
		snapshot.StageResults[stageKey] = result
	}

	result, err := handlers[pipeline.StageKeyLegalReview].Handle(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, domain.StageResultFailed, result.Status)
	assert.Contains(t, result.Message, "unlimited liability")
	snapshot.StageResults[pipeline.StageKeyLegalReview] = result

	// A failed legal review stops the pipeline: the consumer publishes the
	// rejection event instead of the approval trigger, so the final approval
	// stage key never gets a result
	assert.NotContains(t, snapshot.StageResults, pipeline.StageKeyFinalApproval)
	assert.Len(t, snapshot.StageResults, 5)
}
