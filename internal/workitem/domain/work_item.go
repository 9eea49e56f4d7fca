// Package domain defines the work item entities tracked through the pipeline.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the business status of a work item.
type Status string

const (
	StatusDiscovered Status = "discovered"
	StatusQualified  Status = "qualified"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusFailed     Status = "failed"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDiscovered, StatusQualified, StatusInProgress,
		StatusSubmitted, StatusWon, StatusLost, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the pipeline retains the item without further
// progression.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSubmitted, StatusWon, StatusLost, StatusFailed:
		return true
	}
	return false
}

// Stage represents the workflow stage of a work item.
type Stage string

const (
	StageDiscovery     Stage = "discovery"
	StageQualification Stage = "qualification"
	StageAnalysis      Stage = "analysis"
	StagePricing       Stage = "pricing"
	StageProposal      Stage = "proposal"
	StageSubmission    Stage = "submission"
)

// StageResultStatus is the outcome a stage handler reports.
// A failed result is data, not an error: it is recorded and halts the item.
type StageResultStatus string

const (
	StageResultCompleted StageResultStatus = "completed"
	StageResultPartial   StageResultStatus = "partial"
	StageResultFailed    StageResultStatus = "failed"
)

// StageResult is the structured output of one stage handler invocation.
type StageResult struct {
	Status  StageResultStatus `json:"status"`
	Data    map[string]any    `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Encode serializes the result to its stored JSON form.
func (r StageResult) Encode() (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeStageResult parses the stored JSON form of a stage result.
func DecodeStageResult(raw string) (StageResult, error) {
	var r StageResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return StageResult{}, err
	}
	return r, nil
}

// Equal reports whether two results are the same stored value. Results are
// compared through their canonical JSON encoding, which is what the
// idempotent-replay check persists and reads back.
func (r StageResult) Equal(other StageResult) bool {
	a, errA := r.Encode()
	b, errB := other.Encode()
	if errA != nil || errB != nil {
		return false
	}
	return a == b
}

// WorkItem represents a unit of business work (an RFP) tracked through the
// pipeline. StageResults is append-only: one entry per stage key, never
// overwritten.
type WorkItem struct {
	ID              uuid.UUID
	ExternalKey     *string
	Title           string
	Description     string
	Agency          string
	SourceURL       string
	BudgetRange     string
	ConfidenceScore float64
	Deadline        *time.Time
	PostedDate      *time.Time
	RawData         map[string]any
	Stage           Stage
	Status          Status
	StageResults    map[string]StageResult
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SourcePayload carries the normalized document an ingestion producer submits.
type SourcePayload struct {
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Agency          string         `json:"agency,omitempty"`
	SourceURL       string         `json:"source_url"`
	BudgetRange     string         `json:"budget_range,omitempty"`
	ConfidenceScore float64        `json:"confidence_score,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	PostedDate      *time.Time     `json:"posted_date,omitempty"`
	RawData         map[string]any `json:"raw_data,omitempty"`
}

// NewWorkItem creates a freshly discovered work item from a source payload.
// An empty external key means the originating source has no stable reference
// and no deduplication applies.
func NewWorkItem(externalKey string, payload SourcePayload) *WorkItem {
	item := &WorkItem{
		ID:              uuid.Must(uuid.NewV7()),
		Title:           payload.Title,
		Description:     payload.Description,
		Agency:          payload.Agency,
		SourceURL:       payload.SourceURL,
		BudgetRange:     payload.BudgetRange,
		ConfidenceScore: payload.ConfidenceScore,
		Deadline:        payload.Deadline,
		PostedDate:      payload.PostedDate,
		RawData:         payload.RawData,
		Stage:           StageDiscovery,
		Status:          StatusDiscovered,
		StageResults:    map[string]StageResult{},
	}
	if externalKey != "" {
		item.ExternalKey = &externalKey
	}
	return item
}

// Snapshot is a read-only copy of a work item handed to stage handlers.
// Handlers must not mutate pipeline state; they receive a value, not the
// repository record.
type Snapshot struct {
	ID              uuid.UUID
	ExternalKey     string
	Title           string
	Description     string
	Agency          string
	SourceURL       string
	BudgetRange     string
	ConfidenceScore float64
	Deadline        *time.Time
	PostedDate      *time.Time
	RawData         map[string]any
	Stage           Stage
	Status          Status
	StageResults    map[string]StageResult
}

// Snapshot builds the read-only handler view of the work item.
func (w *WorkItem) Snapshot() Snapshot {
	externalKey := ""
	if w.ExternalKey != nil {
		externalKey = *w.ExternalKey
	}
	results := make(map[string]StageResult, len(w.StageResults))
	for k, v := range w.StageResults {
		results[k] = v
	}
	return Snapshot{
		ID:              w.ID,
		ExternalKey:     externalKey,
		Title:           w.Title,
		Description:     w.Description,
		Agency:          w.Agency,
		SourceURL:       w.SourceURL,
		BudgetRange:     w.BudgetRange,
		ConfidenceScore: w.ConfidenceScore,
		Deadline:        w.Deadline,
		PostedDate:      w.PostedDate,
		RawData:         w.RawData,
		Stage:           w.Stage,
		Status:          w.Status,
		StageResults:    results,
	}
}
