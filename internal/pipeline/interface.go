// Package pipeline implements the stage consumer protocol and the coordinator
// that supervises one consumer group per stage transition.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// EventStore defines the durable event queue operations a consumer needs.
type EventStore interface {
	Publish(ctx context.Context, event *eventsDomain.Event) error
	ClaimNext(
		ctx context.Context,
		eventType eventsDomain.EventType,
		ownerID string,
		lease time.Duration,
	) (*eventsDomain.Event, error)
	Ack(ctx context.Context, eventID uuid.UUID, ownerID string) (bool, error)
	DeadLetter(ctx context.Context, eventID uuid.UUID, reason string) error
}

// WorkItems defines the work item operations a consumer needs.
type WorkItems interface {
	Get(ctx context.Context, id uuid.UUID) (*workItemDomain.WorkItem, error)
	RecordStageResult(
		ctx context.Context,
		id uuid.UUID,
		stageKey string,
		result workItemDomain.StageResult,
		stage workItemDomain.Stage,
		status workItemDomain.Status,
	) (*workItemDomain.WorkItem, error)
}

// Handler is the opaque stage function invoked with a read-only work item
// snapshot. Handlers may perform their own I/O but must not publish events or
// mutate pipeline state; a failed StageResult is data, not an error.
type Handler interface {
	Handle(ctx context.Context, snapshot workItemDomain.Snapshot) (workItemDomain.StageResult, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, snapshot workItemDomain.Snapshot) (workItemDomain.StageResult, error)

// Handle invokes the wrapped function.
func (f HandlerFunc) Handle(
	ctx context.Context,
	snapshot workItemDomain.Snapshot,
) (workItemDomain.StageResult, error) {
	return f(ctx, snapshot)
}
