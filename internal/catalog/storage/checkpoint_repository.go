package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gomarketplace_ingest/internal/catalog/models"
)

type CheckpointRepository struct {
	db *sql.DB
}

func NewCheckpointRepository(db *sql.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

func (r *CheckpointRepository) LoadActive(ctx context.Context) (*models.CheckpointRecord, error) {
	query := `
		SELECT run_id, scroll_id, last_processed_id, status, started_at, last_processed_at
		FROM parsing_state
		WHERE status = 'active'
		ORDER BY last_processed_at DESC
		LIMIT 1`

	var (
		record   models.CheckpointRecord
		scrollID sql.NullString
		lastID   sql.NullInt64
		status   string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&record.RunID, &scrollID, &lastID, &status, &record.StartedAt, &record.LastProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load parsing state: %w", err)
	}

	if scrollID.Valid {
		record.Cursor = models.NewCursor(scrollID.String)
	}
	record.LastProcessedID = lastID.Int64
	record.Status = models.CheckpointStatus(status)
	return &record, nil
}

// Save upserts the single active row. run_id is only set when the row is created.
func (r *CheckpointRepository) Save(ctx context.Context, cursor models.PageCursor, lastProcessedID int64) error {
	query := `
		INSERT INTO parsing_state (run_id, scroll_id, last_processed_id, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (status) WHERE status = 'active' DO UPDATE
		SET scroll_id = EXCLUDED.scroll_id,
			last_processed_id = EXCLUDED.last_processed_id,
			last_processed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP`

	var scrollID sql.NullString
	if cursor != nil {
		scrollID = sql.NullString{String: *cursor, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), scrollID, lastProcessedID); err != nil {
		return fmt.Errorf("failed to save parsing state: %w", err)
	}
	return nil
}

func (r *CheckpointRepository) MarkDone(ctx context.Context) error {
	query := `
		UPDATE parsing_state
		SET status = 'done', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'active'`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to close parsing state: %w", err)
	}
	return nil
}
