package app

import (
	"fmt"

	ingestionHTTP "github.com/allisson/rfp-pipeline/internal/ingestion/http"
	ingestionUseCase "github.com/allisson/rfp-pipeline/internal/ingestion/usecase"
)

// IngestionUseCase returns the ingestion use case.
func (c *Container) IngestionUseCase() (ingestionUseCase.UseCase, error) {
	var err error
	c.ingestionUseCaseInit.Do(func() {
		c.ingestionUseCase, err = c.initIngestionUseCase()
		if err != nil {
			c.initErrors["ingestionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ingestionUseCase"]; exists {
		return nil, storedErr
	}
	return c.ingestionUseCase, nil
}

// IngestionHandler returns the HTTP handler for document ingestion.
func (c *Container) IngestionHandler() (*ingestionHTTP.IngestionHandler, error) {
	var err error
	c.ingestionHandlerInit.Do(func() {
		c.ingestionHandler, err = c.initIngestionHandler()
		if err != nil {
			c.initErrors["ingestionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ingestionHandler"]; exists {
		return nil, storedErr
	}
	return c.ingestionHandler, nil
}

// initIngestionUseCase creates the ingestion use case with all its dependencies.
func (c *Container) initIngestionUseCase() (ingestionUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for ingestion use case: %w", err)
	}

	workItems, err := c.WorkItemUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get work item use case for ingestion use case: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for ingestion use case: %w", err)
	}

	return ingestionUseCase.NewIngestionUseCase(txManager, workItems, eventRepo, c.Logger()), nil
}

// initIngestionHandler creates the ingestion HTTP handler.
func (c *Container) initIngestionHandler() (*ingestionHTTP.IngestionHandler, error) {
	useCase, err := c.IngestionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion use case for ingestion handler: %w", err)
	}
	return ingestionHTTP.NewIngestionHandler(useCase, c.Logger()), nil
}
