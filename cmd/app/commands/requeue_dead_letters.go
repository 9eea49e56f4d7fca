package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/rfp-pipeline/internal/app"
	"github.com/allisson/rfp-pipeline/internal/config"
)

// RunRequeueDeadLetters moves all dead-lettered events back to pending so the
// pipeline consumers pick them up again with a fresh attempt budget.
func RunRequeueDeadLetters(ctx context.Context, batchSize int, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	useCase, err := container.EventUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize event use case: %w", err)
	}

	requeued, err := useCase.RequeueAllDeadLetters(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to requeue dead letters: %w", err)
	}

	logger.Info("dead letters requeued", slog.Int("count", requeued))

	fmt.Fprintf(io.Writer, "requeued %d dead-lettered events\n", requeued)
	return nil
}
