// Package mocks provides mock implementations for testing work item use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// MockWorkItemRepository is a mock implementation of WorkItemRepository for testing.
type MockWorkItemRepository struct {
	mock.Mock
}

// Create mocks the Create method of WorkItemRepository. A configured return
// of (nil, nil) echoes the submitted item back, matching the repository's
// insert-then-reselect contract for fresh inserts.
func (m *MockWorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) (*domain.WorkItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return item, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

// GetByID mocks the GetByID method of WorkItemRepository.
func (m *MockWorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

// GetByExternalKey mocks the GetByExternalKey method of WorkItemRepository.
func (m *MockWorkItemRepository) GetByExternalKey(
	ctx context.Context,
	externalKey string,
) (*domain.WorkItem, error) {
	args := m.Called(ctx, externalKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

// ListByStatus mocks the ListByStatus method of WorkItemRepository.
func (m *MockWorkItemRepository) ListByStatus(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WorkItem), args.Error(1)
}

// List mocks the List method of WorkItemRepository.
func (m *MockWorkItemRepository) List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WorkItem), args.Error(1)
}

// Count mocks the Count method of WorkItemRepository.
func (m *MockWorkItemRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method of WorkItemRepository.
func (m *MockWorkItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// UpdateStage mocks the UpdateStage method of WorkItemRepository.
func (m *MockWorkItemRepository) UpdateStage(
	ctx context.Context,
	id uuid.UUID,
	stage domain.Stage,
	status domain.Status,
) error {
	args := m.Called(ctx, id, stage, status)
	return args.Error(0)
}

// InsertStageResult mocks the InsertStageResult method of WorkItemRepository.
func (m *MockWorkItemRepository) InsertStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
	result domain.StageResult,
) error {
	args := m.Called(ctx, id, stageKey, result)
	return args.Error(0)
}

// GetStageResult mocks the GetStageResult method of WorkItemRepository.
func (m *MockWorkItemRepository) GetStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
) (*domain.StageResult, error) {
	args := m.Called(ctx, id, stageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StageResult), args.Error(1)
}
