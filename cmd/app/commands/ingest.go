package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/allisson/rfp-pipeline/internal/app"
	"github.com/allisson/rfp-pipeline/internal/config"
	ingestionUseCase "github.com/allisson/rfp-pipeline/internal/ingestion/usecase"
)

// RunIngest submits a source document file into the pipeline.
// The file must contain a JSON document with external_key and payload fields,
// the same shape accepted by POST /v1/work-items. A dash reads from stdin.
func RunIngest(ctx context.Context, path string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	var input ingestionUseCase.IngestInput
	if path == "-" {
		if err := json.NewDecoder(io.Reader).Decode(&input); err != nil {
			return fmt.Errorf("failed to decode document from stdin: %w", err)
		}
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read document file: %w", err)
		}
		if err := json.Unmarshal(raw, &input); err != nil {
			return fmt.Errorf("failed to decode document file: %w", err)
		}
	}

	useCase, err := container.IngestionUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize ingestion use case: %w", err)
	}

	item, created, err := useCase.Ingest(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	logger.Info("document ingested",
		slog.String("work_item_id", item.ID.String()),
		slog.Bool("created", created),
	)

	fmt.Fprintf(io.Writer, "work item %s (created=%t)\n", item.ID, created)
	return nil
}
