// Package usecase implements the work item business logic and orchestrates
// work item domain operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// WorkItemUseCase handles work item business logic.
type WorkItemUseCase struct {
	txManager database.TxManager
	repo      WorkItemRepository
}

// NewWorkItemUseCase creates a new WorkItemUseCase.
func NewWorkItemUseCase(txManager database.TxManager, repo WorkItemRepository) *WorkItemUseCase {
	return &WorkItemUseCase{
		txManager: txManager,
		repo:      repo,
	}
}

// Create registers a newly discovered work item. When the external key is
// non-empty and already known, the existing item is returned unchanged
// (idempotent re-discovery). An empty key skips deduplication entirely.
func (uc *WorkItemUseCase) Create(
	ctx context.Context,
	externalKey string,
	payload domain.SourcePayload,
) (*domain.WorkItem, bool, error) {
	if payload.Title == "" {
		return nil, false, apperrors.Wrap(apperrors.ErrInvalidInput, "title is required")
	}

	candidate := domain.NewWorkItem(externalKey, payload)
	item, err := uc.repo.Create(ctx, candidate)
	if err != nil {
		return nil, false, err
	}
	return item, item.ID == candidate.ID, nil
}

// RecordStageResult persists a stage handler's output at most once per
// (item, stage key) and advances the workflow stage/status. Replaying the
// identical result is a no-op returning current state; a divergent result for
// an already-recorded stage surfaces ErrConflict, which signals a
// non-idempotent handler bug and is never silently overwritten.
func (uc *WorkItemUseCase) RecordStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
	result domain.StageResult,
	stage domain.Stage,
	status domain.Status,
) (*domain.WorkItem, error) {
	var item *domain.WorkItem

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := uc.repo.InsertStageResult(ctx, id, stageKey, result)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrConflict) {
				return err
			}

			stored, getErr := uc.repo.GetStageResult(ctx, id, stageKey)
			if getErr != nil {
				return getErr
			}
			if !stored.Equal(result) {
				return apperrors.Wrap(apperrors.ErrConflict,
					"stage result already recorded with a different value")
			}

			// Identical replay: state is already what this call would produce.
			item, err = uc.repo.GetByID(ctx, id)
			return err
		}

		if err := uc.repo.UpdateStage(ctx, id, stage, status); err != nil {
			return err
		}

		item, err = uc.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateStatus applies a direct status change, used for terminal and operator
// override transitions such as marking an item won or lost.
func (uc *WorkItemUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	if !status.IsValid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown work item status")
	}
	return uc.repo.UpdateStatus(ctx, id, status)
}

// Get retrieves a work item with its stage results.
func (uc *WorkItemUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListByStatus retrieves work items filtered by status.
func (uc *WorkItemUseCase) ListByStatus(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	if !status.IsValid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown work item status")
	}
	return uc.repo.ListByStatus(ctx, status, offset, limit)
}

// List retrieves work items with pagination plus the total count.
func (uc *WorkItemUseCase) List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, int, error) {
	items, err := uc.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
