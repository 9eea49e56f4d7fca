package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/rfp-pipeline/internal/events/domain"
)

// MockUseCase is a mock implementation of the event queue UseCase for testing.
type MockUseCase struct {
	mock.Mock
}

// Get mocks the Get method of UseCase.
func (m *MockUseCase) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// ListDeadLetters mocks the ListDeadLetters method of UseCase.
func (m *MockUseCase) ListDeadLetters(ctx context.Context, offset, limit int) ([]*domain.Event, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

// Requeue mocks the Requeue method of UseCase.
func (m *MockUseCase) Requeue(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// RequeueAllDeadLetters mocks the RequeueAllDeadLetters method of UseCase.
func (m *MockUseCase) RequeueAllDeadLetters(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}
