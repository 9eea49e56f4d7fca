package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/events/domain"
	"github.com/allisson/rfp-pipeline/internal/events/usecase/mocks"
	"github.com/allisson/rfp-pipeline/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetric(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "events", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "events", operation, mock.AnythingOfType("time.Duration"), status).
		Return().Once()
}

func TestNewUseCaseWithMetrics(t *testing.T) {
	decorator := NewUseCaseWithMetrics(&mocks.MockUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*UseCase)(nil), decorator)
}

func TestMetricsDecorator_Get(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mocks.MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		event := &domain.Event{ID: eventID, EventType: domain.EventTypeIngested}
		mockUseCase.On("Get", ctx, eventID).Return(event, nil).Once()
		expectMetric(mockMetrics, ctx, "event_get", "success")

		decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
		got, err := decorator.Get(ctx, eventID)

		assert.NoError(t, err)
		assert.Equal(t, event, got)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mocks.MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Get", ctx, eventID).Return(nil, apperrors.ErrNotFound).Once()
		expectMetric(mockMetrics, ctx, "event_get", "error")

		decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
		_, err := decorator.Get(ctx, eventID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_ListDeadLetters(t *testing.T) {
	ctx := context.Background()

	mockUseCase := &mocks.MockUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	events := []*domain.Event{{ID: uuid.Must(uuid.NewV7())}}
	mockUseCase.On("ListDeadLetters", ctx, 0, 50).Return(events, nil).Once()
	expectMetric(mockMetrics, ctx, "dead_letter_list", "success")

	decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
	got, err := decorator.ListDeadLetters(ctx, 0, 50)

	assert.NoError(t, err)
	assert.Equal(t, events, got)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_Requeue(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mocks.MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Requeue", ctx, eventID).Return(nil).Once()
		expectMetric(mockMetrics, ctx, "event_requeue", "success")

		decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
		err := decorator.Requeue(ctx, eventID)

		assert.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mocks.MockUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Requeue", ctx, eventID).Return(apperrors.ErrNotFound).Once()
		expectMetric(mockMetrics, ctx, "event_requeue", "error")

		decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
		err := decorator.Requeue(ctx, eventID)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_RequeueAllDeadLetters(t *testing.T) {
	ctx := context.Background()

	mockUseCase := &mocks.MockUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	mockUseCase.On("RequeueAllDeadLetters", ctx, 100).Return(4, nil).Once()
	expectMetric(mockMetrics, ctx, "dead_letter_requeue_all", "success")

	decorator := NewUseCaseWithMetrics(mockUseCase, mockMetrics)
	requeued, err := decorator.RequeueAllDeadLetters(ctx, 100)

	assert.NoError(t, err)
	assert.Equal(t, 4, requeued)
	mockMetrics.AssertExpectations(t)
}
