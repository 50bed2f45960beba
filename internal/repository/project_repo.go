package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/metrics"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("created_by", p.CreatedBy),
		zap.String("title", p.Title),
	)

	query := `
        INSERT INTO projects (title, status, submission_status, overall_progress, target_date, created_by, archived)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.Title,
		p.Status,
		p.SubmissionStatus,
		p.OverallProgress,
		p.TargetDate,
		p.CreatedBy,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", id),
		zap.Int("created_by", p.CreatedBy),
	)
	return id, nil
}

// FindByID returns (nil, nil) when the project does not exist.
func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, title, status, submission_status, overall_progress, target_date, created_by, archived, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Status,
		&p.SubmissionStatus,
		&p.OverallProgress,
		&p.TargetDate,
		&p.CreatedBy,
		&p.Archived,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find project", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ListByMember(ctx context.Context, memberID int) ([]model.Project, error) {
	query := `
        SELECT DISTINCT p.id, p.title, p.status, p.submission_status, p.overall_progress, p.target_date, p.created_by, p.archived, p.created_at, p.updated_at
        FROM projects p
        LEFT JOIN project_members pm ON pm.project_id = p.id
        WHERE p.created_by = $1 OR pm.member_id = $1
        ORDER BY p.id
    `
	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Int("member_id", memberID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

// FindActiveByTargetDate returns non-archived projects whose target_date is
// exactly the given day and whose lifecycle status is in statuses.
func (r *ProjectRepository) FindActiveByTargetDate(ctx context.Context, targetDate time.Time, statuses []string) ([]model.Project, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("select", "projects", time.Since(start))
	}()

	query := `
        SELECT id, title, status, submission_status, overall_progress, target_date, created_by, archived, created_at, updated_at
        FROM projects
        WHERE target_date = $1
          AND status = ANY($2)
          AND archived = FALSE
    `
	rows, err := r.db.Query(ctx, query, targetDate, statuses)
	if err != nil {
		r.logger.Error("Failed to query projects by target date",
			zap.Time("target_date", targetDate),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *ProjectRepository) UpdateSubmissionStatus(ctx context.Context, id int, submissionStatus string) error {
	query := `UPDATE projects SET submission_status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, submissionStatus)
	if err != nil {
		r.logger.Error("Failed to update submission status",
			zap.Int("id", id),
			zap.String("submission_status", submissionStatus),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	r.logger.Info("Submission status updated",
		zap.Int("id", id),
		zap.String("submission_status", submissionStatus),
	)
	return nil
}

func (r *ProjectRepository) SetArchived(ctx context.Context, id int, archived bool) error {
	query := `UPDATE projects SET archived = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateOverallProgress refreshes the cached percentage on the project row.
func (r *ProjectRepository) UpdateOverallProgress(ctx context.Context, id, overallProgress int) error {
	query := `UPDATE projects SET overall_progress = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, overallProgress)
	if err != nil {
		r.logger.Error("Failed to update overall progress",
			zap.Int("id", id),
			zap.Int("overall_progress", overallProgress),
			zap.Error(err),
		)
	}
	return err
}

// Delete removes the project row itself. Returns the number of rows removed
// so callers can distinguish "already gone" from "deleted now".
func (r *ProjectRepository) Delete(ctx context.Context, id int) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("delete", "projects", time.Since(start))
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Int("id", id), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanProjects(rows pgx.Rows) ([]model.Project, error) {
	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Status,
			&p.SubmissionStatus,
			&p.OverallProgress,
			&p.TargetDate,
			&p.CreatedBy,
			&p.Archived,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
