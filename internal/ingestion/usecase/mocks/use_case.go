// Package mocks provides mock implementations for testing ingestion use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	ingestionUseCase "github.com/allisson/rfp-pipeline/internal/ingestion/usecase"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// MockUseCase is a mock implementation of the ingestion UseCase for testing.
type MockUseCase struct {
	mock.Mock
}

// Ingest mocks the Ingest method of UseCase.
func (m *MockUseCase) Ingest(
	ctx context.Context,
	input ingestionUseCase.IngestInput,
) (*domain.WorkItem, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.WorkItem), args.Bool(1), args.Error(2)
}
