// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// StageResultResponse represents a recorded stage result in API responses.
type StageResultResponse struct {
	Status  string         `json:"status"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// WorkItemResponse represents a work item in API responses.
type WorkItemResponse struct {
	ID              string                         `json:"id"`
	ExternalKey     string                         `json:"external_key,omitempty"`
	Title           string                         `json:"title"`
	Description     string                         `json:"description,omitempty"`
	Agency          string                         `json:"agency,omitempty"`
	SourceURL       string                         `json:"source_url"`
	BudgetRange     string                         `json:"budget_range,omitempty"`
	ConfidenceScore float64                        `json:"confidence_score"`
	Deadline        *time.Time                     `json:"deadline,omitempty"`
	PostedDate      *time.Time                     `json:"posted_date,omitempty"`
	Stage           string                         `json:"stage"`
	Status          string                         `json:"status"`
	StageResults    map[string]StageResultResponse `json:"stage_results,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// MapWorkItemToResponse converts a domain work item to an API response.
func MapWorkItemToResponse(item *workItemDomain.WorkItem) WorkItemResponse {
	response := WorkItemResponse{
		ID:              item.ID.String(),
		Title:           item.Title,
		Description:     item.Description,
		Agency:          item.Agency,
		SourceURL:       item.SourceURL,
		BudgetRange:     item.BudgetRange,
		ConfidenceScore: item.ConfidenceScore,
		Deadline:        item.Deadline,
		PostedDate:      item.PostedDate,
		Stage:           string(item.Stage),
		Status:          string(item.Status),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}

	if item.ExternalKey != nil {
		response.ExternalKey = *item.ExternalKey
	}

	if len(item.StageResults) > 0 {
		response.StageResults = make(map[string]StageResultResponse, len(item.StageResults))
		for key, result := range item.StageResults {
			response.StageResults[key] = StageResultResponse{
				Status:  string(result.Status),
				Data:    result.Data,
				Message: result.Message,
			}
		}
	}

	return response
}

// ListWorkItemsResponse represents the response for listing work items.
type ListWorkItemsResponse struct {
	Data  []WorkItemResponse `json:"data"`
	Total int                `json:"total"`
}

// MapWorkItemsToListResponse maps a slice of work items to a list response.
// Returns an empty list instead of null when there are no items to match API conventions.
func MapWorkItemsToListResponse(items []*workItemDomain.WorkItem, total int) ListWorkItemsResponse {
	data := make([]WorkItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapWorkItemToResponse(item))
	}

	return ListWorkItemsResponse{
		Data:  data,
		Total: total,
	}
}
