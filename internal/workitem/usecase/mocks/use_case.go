package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// MockUseCase is a mock implementation of the work item UseCase for testing.
type MockUseCase struct {
	mock.Mock
}

// Create mocks the Create method of UseCase.
func (m *MockUseCase) Create(
	ctx context.Context,
	externalKey string,
	payload domain.SourcePayload,
) (*domain.WorkItem, bool, error) {
	args := m.Called(ctx, externalKey, payload)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.WorkItem), args.Bool(1), args.Error(2)
}

// RecordStageResult mocks the RecordStageResult method of UseCase.
func (m *MockUseCase) RecordStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
	result domain.StageResult,
	stage domain.Stage,
	status domain.Status,
) (*domain.WorkItem, error) {
	args := m.Called(ctx, id, stageKey, result, stage, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method of UseCase.
func (m *MockUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Get mocks the Get method of UseCase.
func (m *MockUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

// ListByStatus mocks the ListByStatus method of UseCase.
func (m *MockUseCase) ListByStatus(
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

// List mocks the List method of UseCase.
func (m *MockUseCase) List(ctx context.Context, offset, limit int) ([]*domain.WorkItem, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.WorkItem), args.Int(1), args.Error(2)
}
