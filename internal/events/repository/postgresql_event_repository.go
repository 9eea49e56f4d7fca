// Package repository provides data persistence implementations for pipeline events.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/events/domain"
)

// PostgreSQLEventRepository handles pipeline event persistence for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQLEventRepository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Publish appends a new pending event to the queue. It participates in a
// surrounding transaction when one is carried in the context, so producers can
// publish atomically with their own writes.
func (r *PostgreSQLEventRepository) Publish(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pipeline_events (id, event_type, payload, status, attempt_count, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, event.ID, event.EventType, event.Payload,
		domain.EventStatusPending, 0)
	if err != nil {
		return apperrors.Wrap(err, "failed to publish event")
	}
	return nil
}

// ClaimNext atomically claims the oldest claimable event of the given type.
// Claimable means pending, or claimed with an expired lease. The claim is a
// single conditional update: concurrent callers can never receive the same
// event because the row is locked by the inner SELECT and skipped by everyone
// else. Returns nil when no event is claimable.
func (r *PostgreSQLEventRepository) ClaimNext(
	ctx context.Context,
	eventType domain.EventType,
	ownerID string,
	lease time.Duration,
) (*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = $1, claim_owner = $2, claimed_at = NOW(),
			      lease_expires_at = NOW() + ($3 * INTERVAL '1 millisecond'),
			      attempt_count = attempt_count + 1, updated_at = NOW()
			  WHERE id = (
			      SELECT id FROM pipeline_events
			      WHERE event_type = $4
			        AND (status = $5 OR (status = $1 AND lease_expires_at < NOW()))
			      ORDER BY created_at ASC, id ASC
			      LIMIT 1
			      FOR UPDATE SKIP LOCKED
			  )
			  RETURNING id, event_type, payload, status, claim_owner, claimed_at,
			            lease_expires_at, attempt_count, last_error, created_at, updated_at`

	var event domain.Event
	err := querier.QueryRowContext(ctx, query,
		domain.EventStatusClaimed, ownerID, lease.Milliseconds(),
		eventType, domain.EventStatusPending,
	).Scan(
		&event.ID, &event.EventType, &event.Payload, &event.Status,
		&event.ClaimOwner, &event.ClaimedAt, &event.LeaseExpiresAt,
		&event.AttemptCount, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to claim event")
	}

	return &event, nil
}

// Ack marks the event acked only when the caller still owns the claim.
// Returns false when the owner does not match or the event is no longer
// claimed, which tells the caller its lease already expired.
func (r *PostgreSQLEventRepository) Ack(ctx context.Context, eventID uuid.UUID, ownerID string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND claim_owner = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query,
		domain.EventStatusAcked, eventID, ownerID, domain.EventStatusClaimed)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to ack event")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read ack result")
	}
	return affected == 1, nil
}

// DeadLetter quarantines an event that exhausted its retry budget.
func (r *PostgreSQLEventRepository) DeadLetter(ctx context.Context, eventID uuid.UUID, reason string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = $1, last_error = $2, updated_at = NOW()
			  WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, domain.EventStatusDeadLetter, reason, eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to dead-letter event")
	}
	return nil
}

// Requeue returns a dead-lettered event to the pending queue after manual
// inspection. The attempt counter is reset so the retry budget starts over.
func (r *PostgreSQLEventRepository) Requeue(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = $1, claim_owner = NULL, claimed_at = NULL,
			      lease_expires_at = NULL, attempt_count = 0, last_error = NULL, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query,
		domain.EventStatusPending, eventID, domain.EventStatusDeadLetter)
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue event")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read requeue result")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single event.
func (r *PostgreSQLEventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_type, payload, status, claim_owner, claimed_at,
			         lease_expires_at, attempt_count, last_error, created_at, updated_at
			  FROM pipeline_events
			  WHERE id = $1`

	var event domain.Event
	err := querier.QueryRowContext(ctx, query, eventID).Scan(
		&event.ID, &event.EventType, &event.Payload, &event.Status,
		&event.ClaimOwner, &event.ClaimedAt, &event.LeaseExpiresAt,
		&event.AttemptCount, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get event")
	}

	return &event, nil
}

// ListDeadLetters retrieves quarantined events for operator inspection.
func (r *PostgreSQLEventRepository) ListDeadLetters(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_type, payload, status, claim_owner, claimed_at,
			         lease_expires_at, attempt_count, last_error, created_at, updated_at
			  FROM pipeline_events
			  WHERE status = $1
			  ORDER BY created_at ASC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, domain.EventStatusDeadLetter, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list dead-lettered events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.Event
	for rows.Next() {
		var event domain.Event
		err := rows.Scan(
			&event.ID, &event.EventType, &event.Payload, &event.Status,
			&event.ClaimOwner, &event.ClaimedAt, &event.LeaseExpiresAt,
			&event.AttemptCount, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan event")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}
	return events, nil
}
