package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/events/domain"
	"github.com/allisson/rfp-pipeline/internal/metrics"
)

// useCaseWithMetrics decorates UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps an event UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *useCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "events", operation, status)
	u.metrics.RecordDuration(ctx, "events", operation, time.Since(start), status)
}

func (u *useCaseWithMetrics) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	start := time.Now()
	event, err := u.next.Get(ctx, eventID)
	u.record(ctx, "event_get", start, err)
	return event, err
}

func (u *useCaseWithMetrics) ListDeadLetters(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Event, error) {
	start := time.Now()
	events, err := u.next.ListDeadLetters(ctx, offset, limit)
	u.record(ctx, "dead_letter_list", start, err)
	return events, err
}

func (u *useCaseWithMetrics) Requeue(ctx context.Context, eventID uuid.UUID) error {
	start := time.Now()
	err := u.next.Requeue(ctx, eventID)
	u.record(ctx, "event_requeue", start, err)
	return err
}

func (u *useCaseWithMetrics) RequeueAllDeadLetters(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	requeued, err := u.next.RequeueAllDeadLetters(ctx, batchSize)
	u.record(ctx, "dead_letter_requeue_all", start, err)
	return requeued, err
}
