package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/rfp-pipeline/internal/database"
	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	"github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// MySQLWorkItemRepository handles work item persistence for MySQL.
type MySQLWorkItemRepository struct {
	db *sql.DB
}

// NewMySQLWorkItemRepository creates a new MySQLWorkItemRepository.
func NewMySQLWorkItemRepository(db *sql.DB) *MySQLWorkItemRepository {
	return &MySQLWorkItemRepository{db: db}
}

const mysqlWorkItemColumns = `id, external_key, title, description, agency, source_url,
	budget_range, confidence_score, deadline, posted_date, raw_data, stage, status,
	created_at, updated_at`

// Create inserts a new work item, deduplicating on the external key.
// INSERT IGNORE relies on the unique index: a duplicate key inserts nothing
// and the existing item is returned unchanged.
func (r *MySQLWorkItemRepository) Create(
	ctx context.Context,
	item *domain.WorkItem,
) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	rawData, err := encodeRawData(item.RawData)
	if err != nil {
		return nil, err
	}

	query := `INSERT IGNORE INTO work_items (id, external_key, title, description, agency, source_url,
			      budget_range, confidence_score, deadline, posted_date, raw_data, stage, status,
			      created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	result, err := querier.ExecContext(ctx, query,
		item.ID.String(), item.ExternalKey, item.Title, item.Description, item.Agency,
		item.SourceURL, item.BudgetRange, item.ConfidenceScore, item.Deadline,
		item.PostedDate, rawData, item.Stage, item.Status,
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
func (r *MySQLWorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlWorkItemColumns + ` FROM work_items WHERE id = ?`
	item, err := scanMySQLWorkItem(querier.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		return nil, err
	}

	if err := r.loadStageResults(ctx, querier, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByExternalKey retrieves a work item by its deduplication key.
func (r *MySQLWorkItemRepository) GetByExternalKey(
	ctx context.Context,
	externalKey string,
) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlWorkItemColumns + ` FROM work_items WHERE external_key = ?`
	item, err := scanMySQLWorkItem(querier.QueryRowContext(ctx, query, externalKey))
	if err != nil {
		return nil, err
	}

	if err := r.loadStageResults(ctx, querier, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListByStatus retrieves work items with the given status, oldest first.
func (r *MySQLWorkItemRepository) ListByStatus(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlWorkItemColumns + `
			  FROM work_items
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	return r.queryWorkItems(ctx, querier, query, status, limit, offset)
}

// List retrieves work items with pagination, oldest first.
func (r *MySQLWorkItemRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlWorkItemColumns + `
			  FROM work_items
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	return r.queryWorkItems(ctx, querier, query, limit, offset)
}

// Count returns the total number of work items.
func (r *MySQLWorkItemRepository) Count(ctx context.Context) (int, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_items`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count work items")
	}
	return count, nil
}

// UpdateStatus applies a direct status change (terminal/override transitions).
func (r *MySQLWorkItemRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items SET status = ?, updated_at = NOW() WHERE id = ?`
	result, err := querier.ExecContext(ctx, query, status, id.String())
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
func (r *MySQLWorkItemRepository) UpdateStage(
	ctx context.Context,
	id uuid.UUID,
	stage domain.Stage,
	status domain.Status,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items SET stage = ?, status = ?, updated_at = NOW() WHERE id = ?`
	result, err := querier.ExecContext(ctx, query, stage, status, id.String())
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
func (r *MySQLWorkItemRepository) InsertStageResult(
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

	query := `INSERT IGNORE INTO stage_results (work_item_id, stage_key, result, created_at)
			  VALUES (?, ?, ?, NOW())`

	res, err := querier.ExecContext(ctx, query, id.String(), stageKey, encoded)
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
func (r *MySQLWorkItemRepository) GetStageResult(
	ctx context.Context,
	id uuid.UUID,
	stageKey string,
) (*domain.StageResult, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT result FROM stage_results WHERE work_item_id = ? AND stage_key = ?`

	var encoded string
	err := querier.QueryRowContext(ctx, query, id.String(), stageKey).Scan(&encoded)
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

func (r *MySQLWorkItemRepository) queryWorkItems(
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
		item, err := scanWorkItemFields(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan work item")
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

func (r *MySQLWorkItemRepository) loadStageResults(
	ctx context.Context,
	querier database.Querier,
	item *domain.WorkItem,
) error {
	query := `SELECT stage_key, result FROM stage_results WHERE work_item_id = ?`

	rows, err := querier.QueryContext(ctx, query, item.ID.String())
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

func scanMySQLWorkItem(row *sql.Row) (*domain.WorkItem, error) {
	item, err := scanWorkItemFields(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get work item")
	}
	return item, nil
}
