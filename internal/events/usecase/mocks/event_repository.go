// Package mocks provides mock implementations for testing event use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/rfp-pipeline/internal/events/domain"
)

// MockEventRepository is a mock implementation of EventRepository for testing.
type MockEventRepository struct {
	mock.Mock
}

// Publish mocks the Publish method of EventRepository.
func (m *MockEventRepository) Publish(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ClaimNext mocks the ClaimNext method of EventRepository.
func (m *MockEventRepository) ClaimNext(
	ctx context.Context,
	eventType domain.EventType,
	ownerID string,
	lease time.Duration,
) (*domain.Event, error) {
	args := m.Called(ctx, eventType, ownerID, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// Ack mocks the Ack method of EventRepository.
func (m *MockEventRepository) Ack(ctx context.Context, eventID uuid.UUID, ownerID string) (bool, error) {
	args := m.Called(ctx, eventID, ownerID)
	return args.Bool(0), args.Error(1)
}

// DeadLetter mocks the DeadLetter method of EventRepository.
func (m *MockEventRepository) DeadLetter(ctx context.Context, eventID uuid.UUID, reason string) error {
	args := m.Called(ctx, eventID, reason)
	return args.Error(0)
}

// Requeue mocks the Requeue method of EventRepository.
func (m *MockEventRepository) Requeue(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// GetByID mocks the GetByID method of EventRepository.
func (m *MockEventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// ListDeadLetters mocks the ListDeadLetters method of EventRepository.
func (m *MockEventRepository) ListDeadLetters(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Event, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}
