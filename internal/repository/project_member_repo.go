package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type ProjectMemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectMemberRepository {
	return &ProjectMemberRepository{db: db, logger: logger}
}

// Upsert assigns a member to a project. A (project, member) pair appears at
// most once; re-assigning updates the role instead of inserting a duplicate.
func (r *ProjectMemberRepository) Upsert(ctx context.Context, pm *model.ProjectMember) error {
	query := `
        INSERT INTO project_members (project_id, member_id, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (project_id, member_id) DO UPDATE SET role = EXCLUDED.role
    `
	_, err := r.db.Exec(ctx, query, pm.ProjectID, pm.MemberID, pm.Role)
	if err != nil {
		r.logger.Error("Failed to upsert project member",
			zap.Int("project_id", pm.ProjectID),
			zap.Int("member_id", pm.MemberID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Info("Project member assigned",
		zap.Int("project_id", pm.ProjectID),
		zap.Int("member_id", pm.MemberID),
		zap.String("role", pm.Role),
	)
	return nil
}

func (r *ProjectMemberRepository) ListByProjectID(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	query := `
        SELECT project_id, member_id, role
        FROM project_members
        WHERE project_id = $1
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.ProjectMember
	for rows.Next() {
		var pm model.ProjectMember
		if err := rows.Scan(&pm.ProjectID, &pm.MemberID, &pm.Role); err != nil {
			return nil, err
		}
		members = append(members, pm)
	}
	return members, rows.Err()
}

func (r *ProjectMemberRepository) MemberIDsByProjectID(ctx context.Context, projectID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT member_id FROM project_members WHERE project_id = $1`, projectID,
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

func (r *ProjectMemberRepository) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		r.logger.Error("Failed to delete project members",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
