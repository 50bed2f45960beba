package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/progress"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/status"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/template"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrItemNotFound      = errors.New("checklist item not found")
)

// Store interfaces are declared here, narrow, so the service can be tested
// against in-memory fakes. The pgx repositories satisfy them.

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (int, error)
	FindByID(ctx context.Context, id int) (*model.Project, error)
	ListByMember(ctx context.Context, memberID int) ([]model.Project, error)
	UpdateSubmissionStatus(ctx context.Context, id int, submissionStatus string) error
	SetArchived(ctx context.Context, id int, archived bool) error
	UpdateOverallProgress(ctx context.Context, id, overallProgress int) error
}

type MilestoneStore interface {
	Insert(ctx context.Context, m *model.Milestone) (int, error)
	FindByID(ctx context.Context, id int) (*model.Milestone, error)
	FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error)
	CountByProjectID(ctx context.Context, projectID int) (int, error)
	NextOrderIndex(ctx context.Context, projectID int) (int, error)
	UpdateWeight(ctx context.Context, id, weight int) error
	UpdateProgress(ctx context.Context, id, prog int) error
	Delete(ctx context.Context, id int) error
}

type ChecklistStore interface {
	Insert(ctx context.Context, item *model.ChecklistItem) (int, error)
	FindByID(ctx context.Context, id int) (*model.ChecklistItem, error)
	FindByMilestoneID(ctx context.Context, milestoneID int) ([]model.ChecklistItem, error)
	CountsByMilestoneID(ctx context.Context, milestoneID int) (int, int, error)
	SetCompleted(ctx context.Context, id int, completed bool, memberID int) error
	DeleteByMilestoneID(ctx context.Context, milestoneID int) (int64, error)
}

type ProjectMemberStore interface {
	Upsert(ctx context.Context, pm *model.ProjectMember) error
	ListByProjectID(ctx context.Context, projectID int) ([]model.ProjectMember, error)
}

type Service struct {
	projects       ProjectStore
	milestones     MilestoneStore
	checklist      ChecklistStore
	projectMembers ProjectMemberStore
	seeder         *template.Seeder
	logger         *zap.Logger
}

func NewService(
	projects ProjectStore,
	milestones MilestoneStore,
	checklist ChecklistStore,
	projectMembers ProjectMemberStore,
	seeder *template.Seeder,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:       projects,
		milestones:     milestones,
		checklist:      checklist,
		projectMembers: projectMembers,
		seeder:         seeder,
		logger:         logger,
	}
}

// CreateProject inserts a new project, registers the creator as first_author
// and, when seedTemplate is set, instantiates the default milestone template.
func (s *Service) CreateProject(ctx context.Context, title string, targetDate *time.Time, createdBy int, seedTemplate bool) (*model.Project, error) {
	p := &model.Project{
		Title:            title,
		Status:           status.Preparing,
		SubmissionStatus: status.NotSubmitted,
		OverallProgress:  0,
		TargetDate:       targetDate,
		CreatedBy:        createdBy,
	}

	id, err := s.projects.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if err := s.projectMembers.Upsert(ctx, &model.ProjectMember{
		ProjectID: id,
		MemberID:  createdBy,
		Role:      "first_author",
	}); err != nil {
		return nil, err
	}

	if seedTemplate {
		if err := s.seeder.Seed(ctx, id); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Project created",
		zap.Int("project_id", id),
		zap.Int("created_by", createdBy),
		zap.Bool("seeded", seedTemplate),
	)
	return p, nil
}

// ListProjects returns the projects a member created or participates in.
func (s *Service) ListProjects(ctx context.Context, memberID int) ([]model.Project, error) {
	return s.projects.ListByMember(ctx, memberID)
}

type MilestoneDetail struct {
	model.Milestone
	Checklist []model.ChecklistItem `json:"checklist"`
}

type Detail struct {
	model.Project
	Milestones []MilestoneDetail     `json:"milestones"`
	Members    []model.ProjectMember `json:"members"`
}

func (s *Service) GetProject(ctx context.Context, id int) (*Detail, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	milestones, err := s.milestones.FindByProjectID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Project: *p}
	for _, m := range milestones {
		items, err := s.checklist.FindByMilestoneID(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		detail.Milestones = append(detail.Milestones, MilestoneDetail{Milestone: m, Checklist: items})
	}

	members, err := s.projectMembers.ListByProjectID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Members = members

	return detail, nil
}

// UpdateSubmissionStatus sets the submission status. Transitions are
// permissive; only enum membership is enforced.
func (s *Service) UpdateSubmissionStatus(ctx context.Context, projectID int, newStatus string) error {
	if !status.IsValidSubmissionStatus(newStatus) {
		return fmt.Errorf("invalid submission status %q", newStatus)
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProjectNotFound
	}

	if err := s.projects.UpdateSubmissionStatus(ctx, projectID, newStatus); err != nil {
		return err
	}

	s.logger.Info("Submission status changed",
		zap.Int("project_id", projectID),
		zap.String("from", p.SubmissionStatus),
		zap.String("to", newStatus),
	)
	return nil
}

// SetArchived archives or unarchives a project. Archiving is only allowed
// once the submission status is accepted, in_press or published; the status
// check is skipped when unarchiving.
func (s *Service) SetArchived(ctx context.Context, projectID int, archived bool) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProjectNotFound
	}

	if archived {
		if err := status.ValidateArchive(p.SubmissionStatus); err != nil {
			return err
		}
	}

	if err := s.projects.SetArchived(ctx, projectID, archived); err != nil {
		return err
	}

	s.logger.Info("Project archive flag updated",
		zap.Int("project_id", projectID),
		zap.Bool("archived", archived),
	)
	return nil
}

func (s *Service) AssignMember(ctx context.Context, projectID, memberID int, role string) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProjectNotFound
	}

	return s.projectMembers.Upsert(ctx, &model.ProjectMember{
		ProjectID: projectID,
		MemberID:  memberID,
		Role:      role,
	})
}

// AddMilestone appends a milestone with order_index = max+1 and recomputes
// the cached overall progress.
func (s *Service) AddMilestone(ctx context.Context, projectID int, title string, weight int) (*model.Milestone, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("milestone weight must be positive, got %d", weight)
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	order, err := s.milestones.NextOrderIndex(ctx, projectID)
	if err != nil {
		return nil, err
	}

	m := &model.Milestone{
		ProjectID:  projectID,
		Title:      title,
		Weight:     weight,
		OrderIndex: order,
		Progress:   0,
	}
	id, err := s.milestones.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id

	if _, err := s.recomputeOverall(ctx, projectID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMilestoneWeight(ctx context.Context, milestoneID, weight int) error {
	if weight <= 0 {
		return fmt.Errorf("milestone weight must be positive, got %d", weight)
	}

	m, err := s.milestones.FindByID(ctx, milestoneID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMilestoneNotFound
	}

	if err := s.milestones.UpdateWeight(ctx, milestoneID, weight); err != nil {
		return err
	}

	_, err = s.recomputeOverall(ctx, m.ProjectID)
	return err
}

// RemoveMilestone deletes one milestone together with its checklist items,
// then recomputes the project percentage.
func (s *Service) RemoveMilestone(ctx context.Context, milestoneID int) error {
	m, err := s.milestones.FindByID(ctx, milestoneID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMilestoneNotFound
	}

	if _, err := s.checklist.DeleteByMilestoneID(ctx, milestoneID); err != nil {
		return err
	}
	if err := s.milestones.Delete(ctx, milestoneID); err != nil {
		return err
	}

	_, err = s.recomputeOverall(ctx, m.ProjectID)
	return err
}

// ToggleChecklistItem flips a checklist item and propagates the derived
// percentages: milestone progress first, then the project's cached overall.
func (s *Service) ToggleChecklistItem(ctx context.Context, itemID int, completed bool, memberID int) (int, error) {
	item, err := s.checklist.FindByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, ErrItemNotFound
	}

	if err := s.checklist.SetCompleted(ctx, itemID, completed, memberID); err != nil {
		return 0, err
	}

	done, total, err := s.checklist.CountsByMilestoneID(ctx, item.MilestoneID)
	if err != nil {
		return 0, err
	}
	milestoneProgress := progress.Milestone(done, total)
	if err := s.milestones.UpdateProgress(ctx, item.MilestoneID, milestoneProgress); err != nil {
		return 0, err
	}

	m, err := s.milestones.FindByID(ctx, item.MilestoneID)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 0, ErrMilestoneNotFound
	}

	return s.recomputeOverall(ctx, m.ProjectID)
}

func (s *Service) recomputeOverall(ctx context.Context, projectID int) (int, error) {
	milestones, err := s.milestones.FindByProjectID(ctx, projectID)
	if err != nil {
		return 0, err
	}

	inputs := make([]progress.MilestoneInput, 0, len(milestones))
	for _, m := range milestones {
		inputs = append(inputs, progress.MilestoneInput{Weight: m.Weight, Progress: m.Progress})
	}

	overall := progress.Overall(inputs)
	if err := s.projects.UpdateOverallProgress(ctx, projectID, overall); err != nil {
		return 0, err
	}

	s.logger.Debug("Overall progress recomputed",
		zap.Int("project_id", projectID),
		zap.Int("overall_progress", overall),
	)
	return overall, nil
}
