package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/events/domain"
)

// EventRepository defines pipeline event repository operations.
type EventRepository interface {
	Publish(ctx context.Context, event *domain.Event) error
	ClaimNext(ctx context.Context, eventType domain.EventType, ownerID string, lease time.Duration) (*domain.Event, error)
	Ack(ctx context.Context, eventID uuid.UUID, ownerID string) (bool, error)
	DeadLetter(ctx context.Context, eventID uuid.UUID, reason string) error
	Requeue(ctx context.Context, eventID uuid.UUID) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	ListDeadLetters(ctx context.Context, offset, limit int) ([]*domain.Event, error)
}

// UseCase defines the interface for event queue administration operations.
// Claim, ack and dead-letter transitions happen inside the pipeline consumers;
// this surface covers the operator-facing queue operations.
type UseCase interface {
	Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	ListDeadLetters(ctx context.Context, offset, limit int) ([]*domain.Event, error)
	Requeue(ctx context.Context, eventID uuid.UUID) error
	RequeueAllDeadLetters(ctx context.Context, batchSize int) (int, error)
}
