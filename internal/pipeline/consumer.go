package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
	"github.com/allisson/rfp-pipeline/internal/metrics"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// ConsumerConfig holds the timing and retry parameters of a stage consumer.
type ConsumerConfig struct {
	// Lease is the exclusive claim duration; a consumer that crashes mid-claim
	// leaves its event reclaimable after this long.
	Lease time.Duration
	// PollInterval is the idle wait between claim attempts when no event is
	// pending.
	PollInterval time.Duration
	// MaxAttempts bounds redelivery: a claim whose attempt count exceeds this
	// is dead-lettered.
	MaxAttempts int
}

// Consumer polls the event store for one event type, invokes its stage
// handler, records the result, and publishes the next-stage event. It holds
// no persistent state: any number of replicas with the same transition may
// run concurrently.
type Consumer struct {
	transition Transition
	handler    Handler
	config     ConsumerConfig
	txManager  database.TxManager
	store      EventStore
	workItems  WorkItems
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
	ownerID    string

	lastPollNano  atomic.Int64
	lastClaimNano atomic.Int64
}

// NewConsumer creates a stage consumer for one transition. The owner ID is
// unique per replica and scopes event claims and acks.
func NewConsumer(
	transition Transition,
	handler Handler,
	config ConsumerConfig,
	txManager database.TxManager,
	store EventStore,
	workItems WorkItems,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *Consumer {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Consumer{
		transition: transition,
		handler:    handler,
		config:     config,
		txManager:  txManager,
		store:      store,
		workItems:  workItems,
		metrics:    businessMetrics,
		logger:     logger,
		ownerID:    fmt.Sprintf("%s-%s", transition.StageKey, uuid.Must(uuid.NewV7())),
	}
}

// OwnerID returns the claim owner identity of this replica.
func (c *Consumer) OwnerID() string {
	return c.ownerID
}

// LastPoll returns the time of the most recent claim attempt.
func (c *Consumer) LastPoll() time.Time {
	return time.Unix(0, c.lastPollNano.Load())
}

// LastClaim returns the time of the most recent successful claim.
func (c *Consumer) LastClaim() time.Time {
	return time.Unix(0, c.lastClaimNano.Load())
}

// Start runs the claim loop until the context is cancelled. Claim or
// processing errors are logged and retried through lease expiry; they never
// stop the loop.
func (c *Consumer) Start(ctx context.Context) error {
	if c.logger != nil {
		c.logger.Info("starting stage consumer",
			slog.String("stage", c.transition.StageKey),
			slog.String("watched", string(c.transition.Watched)),
			slog.String("owner_id", c.ownerID),
		)
	}

	for {
		select {
		case <-ctx.Done():
			if c.logger != nil {
				c.logger.Info("stopping stage consumer",
					slog.String("stage", c.transition.StageKey),
					slog.String("owner_id", c.ownerID),
				)
			}
			return ctx.Err()
		default:
		}

		c.lastPollNano.Store(time.Now().UnixNano())

		event, err := c.store.ClaimNext(ctx, c.transition.Watched, c.ownerID, c.config.Lease)
		if err != nil {
			if c.logger != nil {
				c.logger.Error("failed to claim event",
					slog.String("stage", c.transition.StageKey),
					slog.Any("error", err),
				)
			}
			c.idle(ctx)
			continue
		}
		if event == nil {
			c.idle(ctx)
			continue
		}

		c.lastClaimNano.Store(time.Now().UnixNano())
		c.metrics.RecordOperation(ctx, "pipeline", c.transition.StageKey+"_claim", "success")

		if err := c.processEvent(ctx, event); err != nil {
			// No ack: the lease expires and the event is redelivered, bounded
			// by MaxAttempts.
			if c.logger != nil {
				c.logger.Error("failed to process event",
					slog.String("stage", c.transition.StageKey),
					slog.String("event_id", event.ID.String()),
					slog.Int("attempt", event.AttemptCount),
					slog.Any("error", err),
				)
			}
			c.metrics.RecordOperation(ctx, "pipeline", c.transition.StageKey+"_process", "error")
		}
	}
}

// idle waits one poll interval or until cancellation.
func (c *Consumer) idle(ctx context.Context) {
	timer := time.NewTimer(c.config.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// processEvent runs the stage protocol for one claimed event.
func (c *Consumer) processEvent(ctx context.Context, event *eventsDomain.Event) error {
	if event.AttemptCount > c.config.MaxAttempts {
		reason := fmt.Sprintf("attempt count %d exceeded maximum %d",
			event.AttemptCount, c.config.MaxAttempts)
		if err := c.store.DeadLetter(ctx, event.ID, reason); err != nil {
			return err
		}
		if c.logger != nil {
			c.logger.Warn("event dead-lettered",
				slog.String("stage", c.transition.StageKey),
				slog.String("event_id", event.ID.String()),
				slog.String("reason", reason),
			)
		}
		c.metrics.RecordOperation(ctx, "pipeline", c.transition.StageKey+"_dead_letter", "success")
		return nil
	}

	payload, err := eventsDomain.DecodePayload(event.Payload)
	if err != nil {
		// Undecodable payloads can never succeed; quarantine immediately.
		return c.store.DeadLetter(ctx, event.ID, fmt.Sprintf("invalid payload: %v", err))
	}

	item, err := c.workItems.Get(ctx, payload.WorkItemID)
	if err != nil {
		return err
	}

	// Replay: a previous owner recorded the result but crashed before acking.
	// Skip the handler and re-emit from the stored result; downstream writes
	// are idempotent so a duplicate next-stage event is harmless.
	if stored, ok := item.StageResults[c.transition.StageKey]; ok {
		if err := c.publishOutcome(ctx, payload, stored); err != nil {
			return err
		}
		return c.ack(ctx, event)
	}

	start := time.Now()
	result, err := c.handler.Handle(ctx, item.Snapshot())
	handlerStatus := "success"
	if err != nil {
		handlerStatus = "error"
	}
	c.metrics.RecordDuration(ctx, "pipeline", c.transition.StageKey+"_handler", time.Since(start), handlerStatus)
	if err != nil {
		return apperrors.Wrap(err, "stage handler failed")
	}

	err = c.txManager.WithTx(ctx, func(ctx context.Context) error {
		status := c.transition.SuccessStatus
		if result.Status == workItemDomain.StageResultFailed {
			status = c.transition.FailureStatus
		}

		if _, err := c.workItems.RecordStageResult(
			ctx, item.ID, c.transition.StageKey, result, c.transition.Stage, status,
		); err != nil {
			return err
		}

		return c.publishOutcome(ctx, payload, result)
	})
	if err != nil {
		return err
	}

	return c.ack(ctx, event)
}

// publishOutcome emits the success or failure event implied by the result.
// Failure events are terminal for the item: nothing watches them, so the
// pipeline halts by never publishing a further stage trigger.
func (c *Consumer) publishOutcome(
	ctx context.Context,
	payload eventsDomain.Payload,
	result workItemDomain.StageResult,
) error {
	eventType := c.transition.SuccessEvent
	if result.Status == workItemDomain.StageResultFailed {
		eventType = c.transition.FailureEvent
	}

	next, err := eventsDomain.NewEvent(eventType, eventsDomain.Payload{
		WorkItemID:  payload.WorkItemID,
		ExternalKey: payload.ExternalKey,
		Data:        result.Data,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to build next-stage event")
	}
	return c.store.Publish(ctx, next)
}

// ack finishes the claimed event. A false return means the lease expired and
// another owner governs the event's fate; local effects are already durable
// and idempotent, so this is accepted silently.
func (c *Consumer) ack(ctx context.Context, event *eventsDomain.Event) error {
	acked, err := c.store.Ack(ctx, event.ID, c.ownerID)
	if err != nil {
		return err
	}
	if !acked && c.logger != nil {
		c.logger.Warn("ack rejected, lease expired",
			slog.String("stage", c.transition.StageKey),
			slog.String("event_id", event.ID.String()),
			slog.String("owner_id", c.ownerID),
		)
	}
	c.metrics.RecordOperation(ctx, "pipeline", c.transition.StageKey+"_ack", ackStatus(acked))
	return nil
}

func ackStatus(acked bool) string {
	if acked {
		return "success"
	}
	return "rejected"
}
