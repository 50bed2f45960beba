package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type ChecklistRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChecklistRepository(db *pgxpool.Pool, logger *zap.Logger) *ChecklistRepository {
	return &ChecklistRepository{db: db, logger: logger}
}

func (r *ChecklistRepository) Insert(ctx context.Context, item *model.ChecklistItem) (int, error) {
	query := `
        INSERT INTO checklist_items (milestone_id, title, order_index, is_completed)
        VALUES ($1, $2, $3, FALSE)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, item.MilestoneID, item.Title, item.OrderIndex).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert checklist item",
			zap.Int("milestone_id", item.MilestoneID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *ChecklistRepository) FindByID(ctx context.Context, id int) (*model.ChecklistItem, error) {
	query := `
        SELECT id, milestone_id, title, order_index, is_completed, completed_at, completed_by
        FROM checklist_items
        WHERE id = $1
    `
	var item model.ChecklistItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.MilestoneID,
		&item.Title,
		&item.OrderIndex,
		&item.IsCompleted,
		&item.CompletedAt,
		&item.CompletedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) FindByMilestoneID(ctx context.Context, milestoneID int) ([]model.ChecklistItem, error) {
	query := `
        SELECT id, milestone_id, title, order_index, is_completed, completed_at, completed_by
        FROM checklist_items
        WHERE milestone_id = $1
        ORDER BY order_index ASC
    `
	rows, err := r.db.Query(ctx, query, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		var item model.ChecklistItem
		if err := rows.Scan(
			&item.ID,
			&item.MilestoneID,
			&item.Title,
			&item.OrderIndex,
			&item.IsCompleted,
			&item.CompletedAt,
			&item.CompletedBy,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountsByMilestoneID returns (completed, total) for a milestone's checklist.
func (r *ChecklistRepository) CountsByMilestoneID(ctx context.Context, milestoneID int) (int, int, error) {
	query := `
        SELECT COUNT(*) FILTER (WHERE is_completed), COUNT(*)
        FROM checklist_items
        WHERE milestone_id = $1
    `
	var completed, total int
	err := r.db.QueryRow(ctx, query, milestoneID).Scan(&completed, &total)
	return completed, total, err
}

// SetCompleted toggles an item. completed_at/completed_by are set only on the
// transition to completed and cleared on the way back.
func (r *ChecklistRepository) SetCompleted(ctx context.Context, id int, completed bool, memberID int) error {
	var err error
	if completed {
		_, err = r.db.Exec(ctx, `
            UPDATE checklist_items
            SET is_completed = TRUE, completed_at = NOW(), completed_by = $2
            WHERE id = $1
        `, id, memberID)
	} else {
		_, err = r.db.Exec(ctx, `
            UPDATE checklist_items
            SET is_completed = FALSE, completed_at = NULL, completed_by = NULL
            WHERE id = $1
        `, id)
	}

	if err != nil {
		r.logger.Error("Failed to toggle checklist item",
			zap.Int("id", id),
			zap.Bool("completed", completed),
			zap.Error(err),
		)
	}
	return err
}

func (r *ChecklistRepository) DeleteByMilestoneID(ctx context.Context, milestoneID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM checklist_items WHERE milestone_id = $1`, milestoneID)
	if err != nil {
		r.logger.Error("Failed to delete checklist items",
			zap.Int("milestone_id", milestoneID),
			zap.Error(err),
		)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
