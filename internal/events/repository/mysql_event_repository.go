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

// MySQLEventRepository handles pipeline event persistence for MySQL.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQLEventRepository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Publish appends a new pending event to the queue.
func (r *MySQLEventRepository) Publish(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pipeline_events (id, event_type, payload, status, attempt_count, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, event.ID.String(), event.EventType, event.Payload,
		domain.EventStatusPending, 0)
	if err != nil {
		return apperrors.Wrap(err, "failed to publish event")
	}
	return nil
}

// ClaimNext atomically claims the oldest claimable event of the given type.
// MySQL lacks UPDATE ... RETURNING, so the claim runs in its own transaction:
// the row is selected FOR UPDATE SKIP LOCKED, updated, and re-read. The row
// lock makes the select-then-update pair atomic with respect to other claimers.
func (r *MySQLEventRepository) ClaimNext(
	ctx context.Context,
	eventType domain.EventType,
	ownerID string,
	lease time.Duration,
) (*domain.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to begin claim transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	selectQuery := `SELECT id FROM pipeline_events
				    WHERE event_type = ?
				      AND (status = ? OR (status = ? AND lease_expires_at < NOW()))
				    ORDER BY created_at ASC, id ASC
				    LIMIT 1
				    FOR UPDATE SKIP LOCKED`

	var id string
	err = tx.QueryRowContext(ctx, selectQuery,
		eventType, domain.EventStatusPending, domain.EventStatusClaimed).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to select claimable event")
	}

	updateQuery := `UPDATE pipeline_events
				    SET status = ?, claim_owner = ?, claimed_at = NOW(),
				        lease_expires_at = DATE_ADD(NOW(), INTERVAL ? MICROSECOND),
				        attempt_count = attempt_count + 1, updated_at = NOW()
				    WHERE id = ?`

	_, err = tx.ExecContext(ctx, updateQuery,
		domain.EventStatusClaimed, ownerID, lease.Microseconds(), id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim event")
	}

	event, err := scanMySQLEvent(tx.QueryRowContext(ctx, `
		SELECT id, event_type, payload, status, claim_owner, claimed_at,
		       lease_expires_at, attempt_count, last_error, created_at, updated_at
		FROM pipeline_events WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, "failed to commit claim")
	}
	return event, nil
}

// Ack marks the event acked only when the caller still owns the claim.
func (r *MySQLEventRepository) Ack(ctx context.Context, eventID uuid.UUID, ownerID string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = ?, updated_at = NOW()
			  WHERE id = ? AND claim_owner = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		domain.EventStatusAcked, eventID.String(), ownerID, domain.EventStatusClaimed)
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
func (r *MySQLEventRepository) DeadLetter(ctx context.Context, eventID uuid.UUID, reason string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = ?, last_error = ?, updated_at = NOW()
			  WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, domain.EventStatusDeadLetter, reason, eventID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to dead-letter event")
	}
	return nil
}

// Requeue returns a dead-lettered event to the pending queue.
func (r *MySQLEventRepository) Requeue(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pipeline_events
			  SET status = ?, claim_owner = NULL, claimed_at = NULL,
			      lease_expires_at = NULL, attempt_count = 0, last_error = NULL, updated_at = NOW()
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		domain.EventStatusPending, eventID.String(), domain.EventStatusDeadLetter)
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
func (r *MySQLEventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_type, payload, status, claim_owner, claimed_at,
			         lease_expires_at, attempt_count, last_error, created_at, updated_at
			  FROM pipeline_events
			  WHERE id = ?`

	event, err := scanMySQLEvent(querier.QueryRowContext(ctx, query, eventID.String()))
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListDeadLetters retrieves quarantined events for operator inspection.
func (r *MySQLEventRepository) ListDeadLetters(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_type, payload, status, claim_owner, claimed_at,
			         lease_expires_at, attempt_count, last_error, created_at, updated_at
			  FROM pipeline_events
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, domain.EventStatusDeadLetter, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list dead-lettered events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.Event
	for rows.Next() {
		var event domain.Event
		var id string
		err := rows.Scan(
			&id, &event.EventType, &event.Payload, &event.Status,
			&event.ClaimOwner, &event.ClaimedAt, &event.LeaseExpiresAt,
			&event.AttemptCount, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan event")
		}
		event.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse event id")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}
	return events, nil
}

// scanMySQLEvent scans a single event row, parsing the string UUID column.
func scanMySQLEvent(row *sql.Row) (*domain.Event, error) {
	var event domain.Event
	var id string
	err := row.Scan(
		&id, &event.EventType, &event.Payload, &event.Status,
		&event.ClaimOwner, &event.ClaimedAt, &event.LeaseExpiresAt,
		&event.AttemptCount, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan event")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse event id")
	}
	event.ID = parsed
	return &event, nil
}
