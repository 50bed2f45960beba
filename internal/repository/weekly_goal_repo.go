package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type WeeklyGoalRepository struct {
	db *pgxpool.Pool
}

func NewWeeklyGoalRepository(db *pgxpool.Pool) *WeeklyGoalRepository {
	return &WeeklyGoalRepository{db: db}
}

func (r *WeeklyGoalRepository) Insert(ctx context.Context, g *model.WeeklyGoal) (int, error) {
	query := `
        INSERT INTO weekly_goals (project_id, member_id, content, week_start)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, g.ProjectID, g.MemberID, g.Content, g.WeekStart).Scan(&id)
	return id, err
}

func (r *WeeklyGoalRepository) ListByProjectID(ctx context.Context, projectID int) ([]model.WeeklyGoal, error) {
	query := `
        SELECT id, project_id, member_id, content, week_start
        FROM weekly_goals
        WHERE project_id = $1
        ORDER BY week_start DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []model.WeeklyGoal
	for rows.Next() {
		var g model.WeeklyGoal
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.MemberID, &g.Content, &g.WeekStart); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *WeeklyGoalRepository) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM weekly_goals WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
