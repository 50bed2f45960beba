// Package template holds the fixed milestone template instantiated for new
// research projects, and the idempotent seeder that writes it.
package template

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type Stage struct {
	Title     string
	Weight    int
	Checklist []string
}

// Stages is the default 6-stage research lifecycle. It is package-level
// immutable configuration: never mutated at runtime, only read by Seed.
var Stages = []Stage{
	{
		Title:  "Literature Review",
		Weight: 10,
		Checklist: []string{
			"Collect key papers",
			"Summarize related work",
			"Identify research gap",
		},
	},
	{
		Title:  "Research Design",
		Weight: 15,
		Checklist: []string{
			"Define research questions",
			"Design methodology",
			"Prepare IRB / materials",
		},
	},
	{
		Title:  "Data Collection",
		Weight: 25,
		Checklist: []string{
			"Run pilot",
			"Collect data",
			"Validate dataset",
		},
	},
	{
		Title:  "Analysis",
		Weight: 20,
		Checklist: []string{
			"Clean data",
			"Run analysis",
			"Interpret results",
		},
	},
	{
		Title:  "Manuscript Writing",
		Weight: 20,
		Checklist: []string{
			"Draft manuscript",
			"Internal review",
			"Revise draft",
		},
	},
	{
		Title:  "Submission",
		Weight: 10,
		Checklist: []string{
			"Format for venue",
			"Submit manuscript",
			"Respond to reviewers",
		},
	},
}

type MilestoneStore interface {
	CountByProjectID(ctx context.Context, projectID int) (int, error)
	Insert(ctx context.Context, m *model.Milestone) (int, error)
}

type ChecklistStore interface {
	Insert(ctx context.Context, item *model.ChecklistItem) (int, error)
}

type Seeder struct {
	milestones MilestoneStore
	checklist  ChecklistStore
	logger     *zap.Logger
}

func NewSeeder(milestones MilestoneStore, checklist ChecklistStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		milestones: milestones,
		checklist:  checklist,
		logger:     logger,
	}
}

// Seed instantiates the template for a project. Idempotent per project: when
// any milestones already exist the whole seeding is skipped, never appended.
func (s *Seeder) Seed(ctx context.Context, projectID int) error {
	count, err := s.milestones.CountByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to count milestones: %w", err)
	}
	if count > 0 {
		s.logger.Info("Project already has milestones, skipping template seeding",
			zap.Int("project_id", projectID),
			zap.Int("existing", count),
		)
		return nil
	}

	for i, stage := range Stages {
		milestoneID, err := s.milestones.Insert(ctx, &model.Milestone{
			ProjectID:  projectID,
			Title:      stage.Title,
			Weight:     stage.Weight,
			OrderIndex: i + 1,
			Progress:   0,
		})
		if err != nil {
			return fmt.Errorf("failed to insert milestone %q: %w", stage.Title, err)
		}

		for j, itemTitle := range stage.Checklist {
			_, err := s.checklist.Insert(ctx, &model.ChecklistItem{
				MilestoneID: milestoneID,
				Title:       itemTitle,
				OrderIndex:  j + 1,
			})
			if err != nil {
				return fmt.Errorf("failed to insert checklist item %q: %w", itemTitle, err)
			}
		}
	}

	s.logger.Info("Seeded milestone template",
		zap.Int("project_id", projectID),
		zap.Int("stages", len(Stages)),
	)
	return nil
}
