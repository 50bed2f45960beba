package project

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/metrics"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/rbac"
)

// Privileged store interfaces for the cascade. These run on the service-role
// pool: intermediate tables carry per-row policies that the ordinary request
// identity may not satisfy, so the deleter never uses the user pool.

type PrivilegedProjectStore interface {
	FindByID(ctx context.Context, id int) (*model.Project, error)
	Delete(ctx context.Context, id int) (int64, error)
}

type PrivilegedMilestoneStore interface {
	IDsByProjectID(ctx context.Context, projectID int) ([]int, error)
	DeleteByProjectID(ctx context.Context, projectID int) (int64, error)
}

type PrivilegedChecklistStore interface {
	DeleteByMilestoneID(ctx context.Context, milestoneID int) (int64, error)
}

type PrivilegedProjectMemberStore interface {
	DeleteByProjectID(ctx context.Context, projectID int) (int64, error)
}

type PrivilegedWeeklyGoalStore interface {
	DeleteByProjectID(ctx context.Context, projectID int) (int64, error)
}

type MemberDirectory interface {
	FindByID(ctx context.Context, id int) (*model.Member, error)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Deleter removes a project and every row that depends on it, leaf-first.
// The backing store does not cascade, so ordering is the correctness
// guarantee: children go before parents, strictly sequentially.
type Deleter struct {
	projects       PrivilegedProjectStore
	milestones     PrivilegedMilestoneStore
	checklist      PrivilegedChecklistStore
	projectMembers PrivilegedProjectMemberStore
	weeklyGoals    PrivilegedWeeklyGoalStore
	members        MemberDirectory
	publisher      EventPublisher // optional
	logger         *zap.Logger
}

func NewDeleter(
	projects PrivilegedProjectStore,
	milestones PrivilegedMilestoneStore,
	checklist PrivilegedChecklistStore,
	projectMembers PrivilegedProjectMemberStore,
	weeklyGoals PrivilegedWeeklyGoalStore,
	members MemberDirectory,
	publisher EventPublisher,
	logger *zap.Logger,
) *Deleter {
	return &Deleter{
		projects:       projects,
		milestones:     milestones,
		checklist:      checklist,
		projectMembers: projectMembers,
		weeklyGoals:    weeklyGoals,
		members:        members,
		publisher:      publisher,
		logger:         logger,
	}
}

// Delete authorizes the caller once, then runs the cascade:
//  1. project_members
//  2. checklist items of every milestone
//  3. milestones
//  4. weekly goals
//  5. the project row
//
// Already-applied steps are not rolled back on failure; each step is
// idempotent, so a retry after a partial failure converges.
func (d *Deleter) Delete(ctx context.Context, projectID, callerID int) error {
	p, err := d.projects.FindByID(ctx, projectID)
	if err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return err
	}
	if p == nil {
		metrics.ProjectDeleteCount.WithLabelValues("not_found").Inc()
		return ErrProjectNotFound
	}

	// Single authorization check, before step 1. Only the creator or an
	// administrator may delete; the steps themselves are not re-checked.
	if p.CreatedBy != callerID {
		caller, err := d.members.FindByID(ctx, callerID)
		if err != nil || caller == nil || !rbac.HasPermission(caller.Role, rbac.PermissionDeleteProject) {
			metrics.ProjectDeleteCount.WithLabelValues("denied").Inc()
			return &rbac.PermissionDeniedError{MemberID: callerID, Permission: rbac.PermissionDeleteProject}
		}
	}

	d.logger.Info("Starting cascading project deletion",
		zap.Int("project_id", projectID),
		zap.Int("caller_id", callerID),
	)

	// Step 1: project members.
	if n, err := d.projectMembers.DeleteByProjectID(ctx, projectID); err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to delete project members: %w", err)
	} else {
		d.logger.Debug("Deleted project members", zap.Int("project_id", projectID), zap.Int64("rows", n))
	}

	// Step 2: checklist items, per milestone.
	milestoneIDs, err := d.milestones.IDsByProjectID(ctx, projectID)
	if err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to list milestones: %w", err)
	}
	for _, mid := range milestoneIDs {
		if _, err := d.checklist.DeleteByMilestoneID(ctx, mid); err != nil {
			metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
			return fmt.Errorf("failed to delete checklist items of milestone %d: %w", mid, err)
		}
	}

	// Step 3: milestones.
	if _, err := d.milestones.DeleteByProjectID(ctx, projectID); err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to delete milestones: %w", err)
	}

	// Step 4: auxiliary rows.
	if _, err := d.weeklyGoals.DeleteByProjectID(ctx, projectID); err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to delete weekly goals: %w", err)
	}

	// Step 5: the project itself. A failure here leaves an empty project
	// behind; that is surfaced, and re-running the cascade is safe.
	rows, err := d.projects.Delete(ctx, projectID)
	if err != nil {
		metrics.ProjectDeleteCount.WithLabelValues("failed").Inc()
		return fmt.Errorf("children deleted but project row removal failed, retry is safe: %w", err)
	}
	if rows == 0 {
		// Raced with another delete. Children are gone either way.
		d.logger.Warn("Project row already gone", zap.Int("project_id", projectID))
	}

	metrics.ProjectDeleteCount.WithLabelValues("success").Inc()
	d.logger.Info("Cascading project deletion completed",
		zap.Int("project_id", projectID),
		zap.Int("milestones", len(milestoneIDs)),
	)

	if d.publisher != nil {
		payload := mq.ProjectDeletedPayload{
			ProjectID: projectID,
			DeletedBy: callerID,
			DeletedAt: time.Now(),
		}
		if err := d.publisher.Publish(mq.RoutingKeyProjectDeleted, payload); err != nil {
			// The delete itself succeeded; the event is advisory.
			d.logger.Error("Failed to publish project.deleted event",
				zap.Int("project_id", projectID),
				zap.Error(err),
			)
		}
	}

	return nil
}
