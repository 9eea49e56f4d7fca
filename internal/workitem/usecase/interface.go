package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// WorkItemRepository defines work item repository operations.
type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) (*domain.WorkItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)
	GetByExternalKey(ctx context.Context, externalKey string) (*domain.WorkItem, error)
	ListByStatus(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.WorkItem, error)
	List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, status domain.Status) error
	InsertStageResult(ctx context.Context, id uuid.UUID, stageKey string, result domain.StageResult) error
	GetStageResult(ctx context.Context, id uuid.UUID, stageKey string) (*domain.StageResult, error)
}

// UseCase defines the interface for work item business logic operations.
type UseCase interface {
	// Create returns the item plus whether it was freshly inserted; a dedup
	// hit returns the existing item and false.
	Create(ctx context.Context, externalKey string, payload domain.SourcePayload) (*domain.WorkItem, bool, error)
	RecordStageResult(
		ctx context.Context,
		id uuid.UUID,
		stageKey string,
		result domain.StageResult,
		stage domain.Stage,
		status domain.Status,
	) (*domain.WorkItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)
	ListByStatus(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.WorkItem, error)
	List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, int, error)
}
