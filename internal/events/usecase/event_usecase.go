// Package usecase implements the operator-facing event queue operations:
// inspecting events and recovering dead-lettered ones.
package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/events/domain"
)

// EventUseCase handles event queue administration.
type EventUseCase struct {
	repo   EventRepository
	logger *slog.Logger
}

// NewEventUseCase creates a new EventUseCase.
func NewEventUseCase(repo EventRepository, logger *slog.Logger) *EventUseCase {
	return &EventUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Get retrieves a single event by ID.
func (uc *EventUseCase) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return uc.repo.GetByID(ctx, eventID)
}

// ListDeadLetters retrieves dead-lettered events oldest first.
func (uc *EventUseCase) ListDeadLetters(ctx context.Context, offset, limit int) ([]*domain.Event, error) {
	return uc.repo.ListDeadLetters(ctx, offset, limit)
}

// Requeue moves a dead-lettered event back to pending with a fresh attempt
// budget. Only dead-lettered events can be requeued.
func (uc *EventUseCase) Requeue(ctx context.Context, eventID uuid.UUID) error {
	event, err := uc.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != domain.EventStatusDeadLetter {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "only dead-lettered events can be requeued")
	}
	if err := uc.repo.Requeue(ctx, eventID); err != nil {
		return err
	}

	if uc.logger != nil {
		uc.logger.Info("event requeued",
			slog.String("event_id", eventID.String()),
			slog.String("event_type", string(event.EventType)),
		)
	}
	return nil
}

// RequeueAllDeadLetters drains the dead-letter queue back to pending in
// batches and returns how many events were requeued.
func (uc *EventUseCase) RequeueAllDeadLetters(ctx context.Context, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = 100
	}

	requeued := 0
	for {
		events, err := uc.repo.ListDeadLetters(ctx, 0, batchSize)
		if err != nil {
			return requeued, err
		}
		if len(events) == 0 {
			return requeued, nil
		}

		for _, event := range events {
			if err := uc.repo.Requeue(ctx, event.ID); err != nil {
				// A concurrent requeue already moved it; skip and continue.
				if apperrors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return requeued, err
			}
			requeued++
		}
	}
}
