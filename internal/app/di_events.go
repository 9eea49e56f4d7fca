package app

import (
	"fmt"

	eventsHTTP "github.com/allisson/rfp-pipeline/internal/events/http"
	eventsRepository "github.com/allisson/rfp-pipeline/internal/events/repository"
	eventsUseCase "github.com/allisson/rfp-pipeline/internal/events/usecase"
)

// EventRepository returns the pipeline event repository based on database driver.
func (c *Container) EventRepository() (eventsUseCase.EventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// EventUseCase returns the event queue administration use case.
func (c *Container) EventUseCase() (eventsUseCase.UseCase, error) {
	var err error
	c.eventUseCaseInit.Do(func() {
		c.eventUseCase, err = c.initEventUseCase()
		if err != nil {
			c.initErrors["eventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventUseCase"]; exists {
		return nil, storedErr
	}
	return c.eventUseCase, nil
}

// EventHandler returns the HTTP handler for event queue administration.
func (c *Container) EventHandler() (*eventsHTTP.EventHandler, error) {
	var err error
	c.eventHandlerInit.Do(func() {
		c.eventHandler, err = c.initEventHandler()
		if err != nil {
			c.initErrors["eventHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventHandler"]; exists {
		return nil, storedErr
	}
	return c.eventHandler, nil
}

// initEventRepository creates the event repository based on the database driver.
func (c *Container) initEventRepository() (eventsUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return eventsRepository.NewMySQLEventRepository(db), nil
	case "postgres":
		return eventsRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventUseCase creates the event use case with all its dependencies.
func (c *Container) initEventUseCase() (eventsUseCase.UseCase, error) {
	repo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for event use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for event use case: %w", err)
	}

	useCase := eventsUseCase.NewEventUseCase(repo, c.Logger())
	return eventsUseCase.NewUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initEventHandler creates the event HTTP handler.
func (c *Container) initEventHandler() (*eventsHTTP.EventHandler, error) {
	useCase, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for event handler: %w", err)
	}
	return eventsHTTP.NewEventHandler(useCase, c.Logger()), nil
}
