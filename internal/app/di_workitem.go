package app

import (
	"fmt"

	workItemHTTP "github.com/allisson/rfp-pipeline/internal/workitem/http"
	workItemRepository "github.com/allisson/rfp-pipeline/internal/workitem/repository"
	workItemUseCase "github.com/allisson/rfp-pipeline/internal/workitem/usecase"
)

// WorkItemRepository returns the work item repository based on database driver.
func (c *Container) WorkItemRepository() (workItemUseCase.WorkItemRepository, error) {
	var err error
	c.workItemRepoInit.Do(func() {
		c.workItemRepo, err = c.initWorkItemRepository()
		if err != nil {
			c.initErrors["workItemRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workItemRepo"]; exists {
		return nil, storedErr
	}
	return c.workItemRepo, nil
}

// WorkItemUseCase returns the work item use case.
func (c *Container) WorkItemUseCase() (workItemUseCase.UseCase, error) {
	var err error
	c.workItemUseCaseInit.Do(func() {
		c.workItemUseCase, err = c.initWorkItemUseCase()
		if err != nil {
			c.initErrors["workItemUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workItemUseCase"]; exists {
		return nil, storedErr
	}
	return c.workItemUseCase, nil
}

// WorkItemHandler returns the HTTP handler for work item queries.
func (c *Container) WorkItemHandler() (*workItemHTTP.WorkItemHandler, error) {
	var err error
	c.workItemHandlerInit.Do(func() {
		c.workItemHandler, err = c.initWorkItemHandler()
		if err != nil {
			c.initErrors["workItemHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workItemHandler"]; exists {
		return nil, storedErr
	}
	return c.workItemHandler, nil
}

// initWorkItemRepository creates the work item repository based on the database driver.
func (c *Container) initWorkItemRepository() (workItemUseCase.WorkItemRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for work item repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return workItemRepository.NewMySQLWorkItemRepository(db), nil
	case "postgres":
		return workItemRepository.NewPostgreSQLWorkItemRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWorkItemUseCase creates the work item use case with all its dependencies.
func (c *Container) initWorkItemUseCase() (workItemUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for work item use case: %w", err)
	}

	repo, err := c.WorkItemRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get work item repository for work item use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for work item use case: %w", err)
	}

	useCase := workItemUseCase.NewWorkItemUseCase(txManager, repo)
	return workItemUseCase.NewUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initWorkItemHandler creates the work item HTTP handler.
func (c *Container) initWorkItemHandler() (*workItemHTTP.WorkItemHandler, error) {
	useCase, err := c.WorkItemUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get work item use case for work item handler: %w", err)
	}
	return workItemHTTP.NewWorkItemHandler(useCase, c.Logger()), nil
}
