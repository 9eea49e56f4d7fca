// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
)

// EventResponse represents a pipeline event in API responses.
type EventResponse struct {
	ID             string     `json:"id"`
	EventType      string     `json:"event_type"`
	Payload        string     `json:"payload"`
	Status         string     `json:"status"`
	ClaimOwner     string     `json:"claim_owner,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	LeaseExpiresAt *time.Time `json:"lease_expires_at,omitempty"`
	AttemptCount   int        `json:"attempt_count"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MapEventToResponse converts a domain event to an API response.
func MapEventToResponse(event *eventsDomain.Event) EventResponse {
	response := EventResponse{
		ID:             event.ID.String(),
		EventType:      string(event.EventType),
		Payload:        event.Payload,
		Status:         string(event.Status),
		ClaimedAt:      event.ClaimedAt,
		LeaseExpiresAt: event.LeaseExpiresAt,
		AttemptCount:   event.AttemptCount,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}

	if event.ClaimOwner != nil {
		response.ClaimOwner = *event.ClaimOwner
	}
	if event.LastError != nil {
		response.LastError = *event.LastError
	}

	return response
}

// ListEventsResponse represents the response for listing events.
type ListEventsResponse struct {
	Data []EventResponse `json:"data"`
}

// MapEventsToListResponse maps a slice of events to a list response.
// Returns an empty list instead of null when there are no items to match API conventions.
func MapEventsToListResponse(events []*eventsDomain.Event) ListEventsResponse {
	items := make([]EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, MapEventToResponse(event))
	}

	return ListEventsResponse{
		Data: items,
	}
}
