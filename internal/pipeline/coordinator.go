package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/metrics"
)

// CoordinatorConfig holds the coordinator's supervision parameters.
type CoordinatorConfig struct {
	// Replicas is how many concurrent consumers run per transition.
	Replicas int
	// RestartDelay is the pause before a crashed consumer is restarted.
	RestartDelay time.Duration
	// Consumer holds the per-consumer timing and retry parameters.
	Consumer ConsumerConfig
}

// ConsumerHealth is one replica's supervision snapshot.
type ConsumerHealth struct {
	StageKey  string    `json:"stage_key"`
	OwnerID   string    `json:"owner_id"`
	LastPoll  time.Time `json:"last_poll"`
	LastClaim time.Time `json:"last_claim"`
}

// Coordinator owns the stage graph as configuration: it builds one consumer
// group per transition, supervises their execution, and restarts replicas
// that panic. It carries no work-item logic of its own.
type Coordinator struct {
	config    CoordinatorConfig
	consumers []*Consumer
	logger    *slog.Logger
}

// NewCoordinator wires consumers from the transition table and the handler
// registry (stage key to handler). Two transitions watching the same event
// type is a configuration error: the watched type is what identifies a
// consumer group.
func NewCoordinator(
	transitions []Transition,
	handlers map[string]Handler,
	config CoordinatorConfig,
	txManager database.TxManager,
	store EventStore,
	workItems WorkItems,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) (*Coordinator, error) {
	if config.Replicas < 1 {
		config.Replicas = 1
	}

	watched := map[string]bool{}
	var consumers []*Consumer
	for _, transition := range transitions {
		if watched[string(transition.Watched)] {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
				fmt.Sprintf("duplicate consumer configuration for event type %q", transition.Watched))
		}
		watched[string(transition.Watched)] = true

		handler, ok := handlers[transition.StageKey]
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
				fmt.Sprintf("no handler registered for stage %q", transition.StageKey))
		}

		for range config.Replicas {
			consumers = append(consumers, NewConsumer(
				transition, handler, config.Consumer,
				txManager, store, workItems, businessMetrics, logger,
			))
		}
	}

	return &Coordinator{
		config:    config,
		consumers: consumers,
		logger:    logger,
	}, nil
}

// Start runs all consumer replicas until the context is cancelled. A replica
// that panics is logged and restarted after RestartDelay; a clean context
// cancellation stops everything.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.logger != nil {
		c.logger.Info("starting pipeline coordinator",
			slog.Int("consumers", len(c.consumers)),
			slog.Int("replicas", c.config.Replicas),
		)
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, consumer := range c.consumers {
		group.Go(func() error {
			return c.supervise(ctx, consumer)
		})
	}
	return group.Wait()
}

// Health reports each replica's last poll and claim timestamps.
func (c *Coordinator) Health() []ConsumerHealth {
	health := make([]ConsumerHealth, 0, len(c.consumers))
	for _, consumer := range c.consumers {
		health = append(health, ConsumerHealth{
			StageKey:  consumer.transition.StageKey,
			OwnerID:   consumer.OwnerID(),
			LastPoll:  consumer.LastPoll(),
			LastClaim: consumer.LastClaim(),
		})
	}
	return health
}

// supervise runs one replica, restarting it after a panic.
func (c *Coordinator) supervise(ctx context.Context, consumer *Consumer) error {
	for {
		err := c.runGuarded(ctx, consumer)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		if c.logger != nil {
			c.logger.Error("consumer crashed, restarting",
				slog.String("owner_id", consumer.OwnerID()),
				slog.Duration("restart_delay", c.config.RestartDelay),
				slog.Any("error", err),
			)
		}

		timer := time.NewTimer(c.config.RestartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// runGuarded converts a consumer panic into an error for the supervisor.
func (c *Coordinator) runGuarded(ctx context.Context, consumer *Consumer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panic: %v", r)
		}
	}()
	return consumer.Start(ctx)
}
