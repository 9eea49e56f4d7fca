// Package usecase implements the ingestion producer: it turns a normalized
// source document into a deduplicated work item and the ingested event that
// starts the pipeline.
package usecase

import (
	"context"
	"log/slog"

	validation "github.com/jellydator/validation"

	"github.com/allisson/rfp-pipeline/internal/database"
	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
	appValidation "github.com/allisson/rfp-pipeline/internal/validation"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
	workItemUsecase "github.com/allisson/rfp-pipeline/internal/workitem/usecase"
)

// IngestInput is the normalized document an ingestion source submits.
type IngestInput struct {
	ExternalKey string               `json:"external_key"`
	Payload     domain.SourcePayload `json:"payload"`
}

// EventPublisher defines the event store operation the producer needs.
type EventPublisher interface {
	Publish(ctx context.Context, event *eventsDomain.Event) error
}

// UseCase defines the interface for ingestion operations.
type UseCase interface {
	Ingest(ctx context.Context, input IngestInput) (*domain.WorkItem, bool, error)
}

// IngestionUseCase creates work items and publishes their ingested events in
// one transaction, so a crash can never leave an item without its trigger.
type IngestionUseCase struct {
	txManager database.TxManager
	workItems workItemUsecase.UseCase
	publisher EventPublisher
	logger    *slog.Logger
}

// NewIngestionUseCase creates a new IngestionUseCase.
func NewIngestionUseCase(
	txManager database.TxManager,
	workItems workItemUsecase.UseCase,
	publisher EventPublisher,
	logger *slog.Logger,
) *IngestionUseCase {
	return &IngestionUseCase{
		txManager: txManager,
		workItems: workItems,
		publisher: publisher,
		logger:    logger,
	}
}

// validateIngestInput checks the submitted document before anything is stored.
func validateIngestInput(input IngestInput) error {
	err := validation.ValidateStruct(&input.Payload,
		validation.Field(&input.Payload.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.Length(1, 500).Error("title must be between 1 and 500 characters"),
		),
		validation.Field(&input.Payload.SourceURL,
			validation.Required.Error("source_url is required"),
			appValidation.NotBlank,
			appValidation.AbsoluteURL,
		),
		validation.Field(&input.Payload.ConfidenceScore,
			validation.Min(0.0).Error("confidence_score must not be negative"),
			validation.Max(1.0).Error("confidence_score must not exceed 1.0"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// Ingest registers the document and starts its pipeline run. A dedup hit
// (known external key) returns the existing item and publishes nothing:
// re-discovery is a no-op. The bool reports whether a fresh item was created.
func (uc *IngestionUseCase) Ingest(
	ctx context.Context,
	input IngestInput,
) (*domain.WorkItem, bool, error) {
	if err := validateIngestInput(input); err != nil {
		return nil, false, err
	}

	var item *domain.WorkItem
	var created bool

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, created, err = uc.workItems.Create(ctx, input.ExternalKey, input.Payload)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		event, err := eventsDomain.NewEvent(eventsDomain.EventTypeIngested, eventsDomain.Payload{
			WorkItemID:  item.ID,
			ExternalKey: input.ExternalKey,
		})
		if err != nil {
			return err
		}
		return uc.publisher.Publish(ctx, event)
	})
	if err != nil {
		return nil, false, err
	}

	if uc.logger != nil {
		uc.logger.Info("work item ingested",
			slog.String("work_item_id", item.ID.String()),
			slog.String("external_key", input.ExternalKey),
			slog.Bool("created", created),
		)
	}
	return item, created, nil
}
