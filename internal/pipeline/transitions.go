package pipeline

import (
	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// Transition declares one row of the stage graph: which event type triggers
// the stage, which events it emits on success and failure, and the work item
// stage/status each outcome implies.
type Transition struct {
	// Watched is the event type this consumer group claims.
	Watched eventsDomain.EventType
	// StageKey is the key under which the handler result is recorded. Legal
	// review and final approval share the submission workflow stage, so the
	// result key is per transition rather than per workflow stage.
	StageKey string
	// Stage is the workflow stage the work item advances to.
	Stage workItemDomain.Stage
	// SuccessEvent is published when the handler completes or partially
	// completes; FailureEvent when it reports failure.
	SuccessEvent eventsDomain.EventType
	FailureEvent eventsDomain.EventType
	// SuccessStatus/FailureStatus are applied to the work item per outcome.
	SuccessStatus workItemDomain.Status
	FailureStatus workItemDomain.Status
}

// Stage keys used by the default transition table.
const (
	StageKeyQualification = "qualification"
	StageKeyAnalysis      = "analysis"
	StageKeyPricing       = "pricing"
	StageKeyProposal      = "proposal"
	StageKeyLegalReview   = "legal_review"
	StageKeyFinalApproval = "final_approval"
)

// DefaultTransitions returns the stage graph for the RFP pipeline. Failure
// events are dead ends by design: no consumer watches them, they exist for
// observability. A rejection (disqualified, legal, human) marks the item lost;
// a processing failure marks it failed.
func DefaultTransitions() []Transition {
	return []Transition{
		{
			Watched:       eventsDomain.EventTypeIngested,
			StageKey:      StageKeyQualification,
			Stage:         workItemDomain.StageQualification,
			SuccessEvent:  eventsDomain.EventTypeQualified,
			FailureEvent:  eventsDomain.EventTypeDisqualified,
			SuccessStatus: workItemDomain.StatusQualified,
			FailureStatus: workItemDomain.StatusLost,
		},
		{
			Watched:       eventsDomain.EventTypeQualified,
			StageKey:      StageKeyAnalysis,
			Stage:         workItemDomain.StageAnalysis,
			SuccessEvent:  eventsDomain.EventTypeTechnicalDone,
			FailureEvent:  eventsDomain.EventTypeTechnicalFailed,
			SuccessStatus: workItemDomain.StatusInProgress,
			FailureStatus: workItemDomain.StatusFailed,
		},
		{
			Watched:       eventsDomain.EventTypeTechnicalDone,
			StageKey:      StageKeyPricing,
			Stage:         workItemDomain.StagePricing,
			SuccessEvent:  eventsDomain.EventTypePricingDone,
			FailureEvent:  eventsDomain.EventTypePricingFailed,
			SuccessStatus: workItemDomain.StatusInProgress,
			FailureStatus: workItemDomain.StatusFailed,
		},
		{
			Watched:       eventsDomain.EventTypePricingDone,
			StageKey:      StageKeyProposal,
			Stage:         workItemDomain.StageProposal,
			SuccessEvent:  eventsDomain.EventTypeProposalDone,
			FailureEvent:  eventsDomain.EventTypeProposalFailed,
			SuccessStatus: workItemDomain.StatusInProgress,
			FailureStatus: workItemDomain.StatusFailed,
		},
		{
			Watched:       eventsDomain.EventTypeProposalDone,
			StageKey:      StageKeyLegalReview,
			Stage:         workItemDomain.StageSubmission,
			SuccessEvent:  eventsDomain.EventTypeLegalApproved,
			FailureEvent:  eventsDomain.EventTypeLegalRejected,
			SuccessStatus: workItemDomain.StatusInProgress,
			FailureStatus: workItemDomain.StatusLost,
		},
		{
			Watched:       eventsDomain.EventTypeLegalApproved,
			StageKey:      StageKeyFinalApproval,
			Stage:         workItemDomain.StageSubmission,
			SuccessEvent:  eventsDomain.EventTypeHumanApproved,
			FailureEvent:  eventsDomain.EventTypeHumanRejected,
			SuccessStatus: workItemDomain.StatusSubmitted,
			FailureStatus: workItemDomain.StatusLost,
		},
	}
}
