package app

import (
	"fmt"

	"github.com/allisson/rfp-pipeline/internal/pipeline"
	"github.com/allisson/rfp-pipeline/internal/pipeline/handlers"
)

// Coordinator returns the pipeline coordinator with all stage consumers wired.
// Initialize it before HTTPServer to expose consumer health on the API.
func (c *Container) Coordinator() (*pipeline.Coordinator, error) {
	var err error
	c.coordinatorInit.Do(func() {
		c.coordinator, err = c.initCoordinator()
		if err != nil {
			c.initErrors["coordinator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["coordinator"]; exists {
		return nil, storedErr
	}
	return c.coordinator, nil
}

// initCoordinator creates the coordinator with the built-in stage handlers.
func (c *Container) initCoordinator() (*pipeline.Coordinator, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for coordinator: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for coordinator: %w", err)
	}

	workItems, err := c.WorkItemUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get work item use case for coordinator: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for coordinator: %w", err)
	}

	stageHandlers := handlers.DefaultHandlers(handlers.Config{
		MinConfidence:    c.config.QualificationMinConfidence,
		AutoApproveLimit: c.config.ApprovalAutoApproveLimit,
		ForbiddenTerms:   c.config.ForbiddenTerms(),
	})

	coordinatorConfig := pipeline.CoordinatorConfig{
		Replicas:     c.config.PipelineReplicas,
		RestartDelay: c.config.PipelineRestartDelay,
		Consumer: pipeline.ConsumerConfig{
			Lease:        c.config.PipelineLease,
			PollInterval: c.config.PipelinePollInterval,
			MaxAttempts:  c.config.PipelineMaxAttempts,
		},
	}

	return pipeline.NewCoordinator(
		pipeline.DefaultTransitions(),
		stageHandlers,
		coordinatorConfig,
		txManager,
		eventRepo,
		workItems,
		businessMetrics,
		c.Logger(),
	)
}
