// Package domain defines the durable pipeline event entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle status of a pipeline event.
// Events move pending -> claimed -> acked; a claimed event whose lease
// expired becomes claimable again, which is the sole crash-recovery path.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusClaimed    EventStatus = "claimed"
	EventStatusAcked      EventStatus = "acked"
	EventStatusDeadLetter EventStatus = "dead_letter"
)

// EventType identifies which stage transition an event signals.
type EventType string

const (
	EventTypeIngested        EventType = "ingested"
	EventTypeQualified       EventType = "qualified"
	EventTypeDisqualified    EventType = "disqualified"
	EventTypeTechnicalDone   EventType = "technical_done"
	EventTypeTechnicalFailed EventType = "technical_failed"
	EventTypePricingDone     EventType = "pricing_done"
	EventTypePricingFailed   EventType = "pricing_failed"
	EventTypeProposalDone    EventType = "proposal_done"
	EventTypeProposalFailed  EventType = "proposal_failed"
	EventTypeLegalApproved   EventType = "legal_approved"
	EventTypeLegalRejected   EventType = "legal_rejected"
	EventTypeHumanApproved   EventType = "human_approved"
	EventTypeHumanRejected   EventType = "human_rejected"
)

// Event represents a durable record in the pipeline event queue.
type Event struct {
	ID             uuid.UUID
	EventType      EventType
	Payload        string
	Status         EventStatus
	ClaimOwner     *string
	ClaimedAt      *time.Time
	LeaseExpiresAt *time.Time
	AttemptCount   int
	LastError      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Payload is the JSON document carried by every pipeline event.
// WorkItemID is always present; Data carries stage-specific fields.
type Payload struct {
	WorkItemID  uuid.UUID      `json:"work_item_id"`
	ExternalKey string         `json:"external_key,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// Encode serializes the payload to its stored JSON form.
func (p Payload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodePayload parses the stored JSON form of an event payload.
func DecodePayload(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// NewEvent creates a pending event of the given type with a time-ordered ID.
func NewEvent(eventType EventType, payload Payload) (*Event, error) {
	raw, err := payload.Encode()
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   raw,
		Status:    EventStatusPending,
	}, nil
}
