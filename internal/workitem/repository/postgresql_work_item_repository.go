// Package repository provides data persistence implementations for work items.
// Stage results live in their own table with a composite primary key, which
// makes the once-per-stage write a database-level guarantee.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// PostgreSQLWorkItemRepository handles work item persistence for PostgreSQL.
type PostgreSQLWorkItemRepository struct {
	db *sql.DB
}

// NewPostgreSQLWorkItemRepository creates a new PostgreSQLWorkItemRepository.
func NewPostgreSQLWorkItemRepository(db *sql.DB) *PostgreSQLWorkItemRepository {
	return &PostgreSQLWorkItemRepository{db: db}
}

const postgresWorkItemColumns = `id, external_key, title, description, agency, source_url,
	budget_range, confidence_score, deadline, posted_date, raw_data, stage, status,
	created_at, updated_at`

// Create inserts a new work item. When the external key already exists the
// insert is a no-op and the existing item is returned unchanged, which makes
// re-discovery idempotent even under concurrent producers.
func (r *PostgreSQLWorkItemRepository) Create(
	ctx context.Context,
	item *domain.WorkItem,
) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	rawData, err := encodeRawData(item.RawData)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO work_items (id, external_key, title, description, agency, source_url,
			      budget_range, confidence_score, deadline, posted_date, raw_data, stage, status,
			      created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			  ON CONFLICT (external_key) DO NOTHING`

	result, err := querier.ExecContext(ctx, query,
		item.ID, item.ExternalKey, item.Title, item.Description, item.Agency, item.SourceURL,
		item.BudgetRange, item.ConfidenceScore, item.Deadline, item.PostedDate, rawData,
		item.Stage, item.Status,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create work item")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read create result")
	}
	if affected == 0 && item.ExternalKey != nil {
		return r.GetByExternalKey(ctx, *item.ExternalKey)
	}

	return r.GetByID(ctx, item.ID)
}

// GetByID retrieves a work item with its stage results.
func (r *PostgreSQLWorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresWorkItemColumns + ` FROM work_items WHERE id = $1`
	item, err := scanPostgresWorkItem(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadStageResults(ctx, querier, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByExternalKey retrieves a work item by its deduplication key.
func (r *PostgreSQLWorkItemRepository) GetByExternalKey(
	ctx context.Context,
	externalKey string,
) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresWorkItemColumns + ` FROM work_items WHERE external_key = $1`
	item, err := scanPostgresWorkItem(querier.QueryRowContext(ctx, query, externalKey))
	if err != nil {
		return nil, err
	}

	if err := r.loadStageResults(ctx, querier, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListByStatus retrieves work items with the given status, oldest first.
func (r *PostgreSQLWorkItemRepository) ListByStatus(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresWorkItemColumns + `
			  FROM work_items
			  WHERE status = $1
			  ORDER BY created_at ASC
			  OFFSET $2 LIMIT $3`

	return r.queryWorkItems(ctx, querier, query, status, offset, limit)
}

// List retrieves work items with pagination, oldest first.
func (r *PostgreSQLWorkItemRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresWorkItemColumns + `
			  FROM work_items
			  ORDER BY created_at ASC
			  OFFSET $1 LIMIT $2`

	return r.queryWorkItems(ctx, querier, query, offset, limit)
}

// Count returns the total number of work items.
func (r *PostgreSQLWorkItemRepository) Count(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_items`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count work items")
	}
	return count, nil
}

// UpdateStatus applies a direct status change (terminal/override transitions).
func (r *PostgreSQLWorkItemRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := querier.ExecContext(ctx, query, status, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update work item status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read status update result")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateStage advances the workflow stage and status together.
func (r *PostgreSQLWorkItemRepository) UpdateStage(
	ctx context.Context,
	id uuid.UUID,
	stage domain.Stage,
	status domain.Status,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items SET stage = $1, status = $2, updated_at = NOW() WHERE id = $3`
	result, err := querier.ExecContext(ctx, query, stage, status, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update work item stage")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read stage update result")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// InsertStageResult writes a stage result at most once per (item, stage key).
// A duplicate write is reported as ErrConflict through the composite primary
// key, without driver-specific error inspection.
func (r *PostgreSQLWorkItemRepository) InsertStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
	result domain.StageResult,
) error {
	querier := database.GetTx(ctx, r.db)

	encoded, err := result.Encode()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode stage result")
	}

	query := `INSERT INTO stage_results (work_item_id, stage_key, result, created_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (work_item_id, stage_key) DO NOTHING`

	res, err := querier.ExecContext(ctx, query, id, stageKey, encoded)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert stage result")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read stage result insert")
	}
	if affected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// GetStageResult retrieves a single stored stage result.
func (r *PostgreSQLWorkItemRepository) GetStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
) (*domain.StageResult, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT result FROM stage_results WHERE work_item_id = $1 AND stage_key = $2`

	var encoded string
	err := querier.QueryRowContext(ctx, query, id, stageKey).Scan(&encoded)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get stage result")
	}

	result, err := domain.DecodeStageResult(encoded)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode stage result")
	}
	return &result, nil
}

func (r *PostgreSQLWorkItemRepository) queryWorkItems(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.WorkItem, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items")
	}
	defer rows.Close() //nolint:errcheck

	var items []*domain.WorkItem
	for rows.Next() {
		item, err := scanPostgresWorkItemRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate work items")
	}

	for _, item := range items {
		if err := r.loadStageResults(ctx, querier, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *PostgreSQLWorkItemRepository) loadStageResults(
	ctx context.Context,
	querier database.Querier,
	item *domain.WorkItem,
) error {
	query := `SELECT stage_key, result FROM stage_results WHERE work_item_id = $1`

	rows, err := querier.QueryContext(ctx, query, item.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to load stage results")
	}
	defer rows.Close() //nolint:errcheck

	item.StageResults = map[string]domain.StageResult{}
	for rows.Next() {
		var stageKey, encoded string
		if err := rows.Scan(&stageKey, &encoded); err != nil {
			return apperrors.Wrap(err, "failed to scan stage result")
		}
		result, err := domain.DecodeStageResult(encoded)
		if err != nil {
			return apperrors.Wrap(err, "failed to decode stage result")
		}
		item.StageResults[stageKey] = result
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItemFields(scanner rowScanner) (*domain.WorkItem, error) {
	var item domain.WorkItem
	var rawData sql.NullString

	err := scanner.Scan(
		&item.ID, &item.ExternalKey, &item.Title, &item.Description, &item.Agency,
		&item.SourceURL, &item.BudgetRange, &item.ConfidenceScore, &item.Deadline,
		&item.PostedDate, &rawData, &item.Stage, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rawData.Valid && rawData.String != "" {
		if err := json.Unmarshal([]byte(rawData.String), &item.RawData); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode raw data")
		}
	}
	return &item, nil
}

func scanPostgresWorkItem(row *sql.Row) (*domain.WorkItem, error) {
	item, err := scanWorkItemFields(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get work item")
	}
	return item, nil
}

func scanPostgresWorkItemRows(rows *sql.Rows) (*domain.WorkItem, error) {
	item, err := scanWorkItemFields(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan work item")
	}
	return item, nil
}

// encodeRawData serializes the raw document payload. An absent payload encodes
// to an empty JSON object because the raw_data column is NOT NULL.
func encodeRawData(rawData map[string]any) (string, error) {
	if rawData == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(rawData)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode raw data")
	}
	return string(raw), nil
}
