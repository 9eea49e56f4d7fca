package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/metrics"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// useCaseWithMetrics decorates UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps a work item UseCase with metrics recording.
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
	u.metrics.RecordOperation(ctx, "workitem", operation, status)
	u.metrics.RecordDuration(ctx, "workitem", operation, time.Since(start), status)
}

func (u *useCaseWithMetrics) Create(
	ctx context.Context,
	externalKey string,
	payload domain.SourcePayload,
) (*domain.WorkItem, bool, error) {
	start := time.Now()
	item, created, err := u.next.Create(ctx, externalKey, payload)
	u.record(ctx, "work_item_create", start, err)
	return item, created, err
}

func (u *useCaseWithMetrics) RecordStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
	result domain.StageResult,
	stage domain.Stage,
	status domain.Status,
) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := u.next.RecordStageResult(ctx, id, stageKey, result, stage, status)
	u.record(ctx, "stage_result_record", start, err)
	return item, err
}

func (u *useCaseWithMetrics) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	start := time.Now()
	err := u.next.UpdateStatus(ctx, id, status)
	u.record(ctx, "work_item_update_status", start, err)
	return err
}

func (u *useCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := u.next.Get(ctx, id)
	u.record(ctx, "work_item_get", start, err)
	return item, err
}

func (u *useCaseWithMetrics) ListByStatus(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	start := time.Now()
	items, err := u.next.ListByStatus(ctx, status, offset, limit)
	u.record(ctx, "work_item_list_by_status", start, err)
	return items, err
}

func (u *useCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, int, error) {
	start := time.Now()
	items, count, err := u.next.List(ctx, offset, limit)
	u.record(ctx, "work_item_list", start, err)
	return items, count, err
}
