package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) (int, error) {
	r.logger.Debug("Inserting milestone",
		zap.Int("project_id", m.ProjectID),
		zap.String("title", m.Title),
		zap.Int("order_index", m.OrderIndex),
	)

	query := `
        INSERT INTO milestones (project_id, title, weight, order_index, progress)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		m.ProjectID,
		m.Title,
		m.Weight,
		m.OrderIndex,
		m.Progress,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Milestone inserted successfully",
		zap.Int("id", id),
		zap.Int("project_id", m.ProjectID),
	)
	return id, nil
}

func (r *MilestoneRepository) FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error) {
	query := `
        SELECT id, project_id, title, weight, order_index, progress, created_at, updated_at
        FROM milestones
        WHERE project_id = $1
        ORDER BY order_index ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to find milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(
			&m.ID,
			&m.ProjectID,
			&m.Title,
			&m.Weight,
			&m.OrderIndex,
			&m.Progress,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

func (r *MilestoneRepository) FindByID(ctx context.Context, id int) (*model.Milestone, error) {
	query := `
        SELECT id, project_id, title, weight, order_index, progress, created_at, updated_at
        FROM milestones
        WHERE id = $1
    `
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Weight,
		&m.OrderIndex,
		&m.Progress,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepository) CountByProjectID(ctx context.Context, projectID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM milestones WHERE project_id = $1`, projectID,
	).Scan(&count)
	return count, err
}

func (r *MilestoneRepository) IDsByProjectID(ctx context.Context, projectID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM milestones WHERE project_id = $1 ORDER BY order_index ASC`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NextOrderIndex returns max(order_index)+1 for the project. Append-only.
func (r *MilestoneRepository) NextOrderIndex(ctx context.Context, projectID int) (int, error) {
	var next int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index), 0) + 1 FROM milestones WHERE project_id = $1`, projectID,
	).Scan(&next)
	return next, err
}

func (r *MilestoneRepository) UpdateWeight(ctx context.Context, id, weight int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE milestones SET weight = $2, updated_at = NOW() WHERE id = $1`, id, weight,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MilestoneRepository) UpdateProgress(ctx context.Context, id, prog int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE milestones SET progress = $2, updated_at = NOW() WHERE id = $1`, id, prog,
	)
	return err
}

func (r *MilestoneRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	return err
}

func (r *MilestoneRepository) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM milestones WHERE project_id = $1`, projectID)
	if err != nil {
		r.logger.Error("Failed to delete milestones",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
