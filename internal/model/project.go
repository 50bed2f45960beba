package model

import "time"

type Project struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Status           string     `json:"status"`            // preparing / in_progress / under_review / revision / accepted / published
	SubmissionStatus string     `json:"submission_status"` // see status package
	OverallProgress  int        `json:"overall_progress"`  // cached, recomputed from milestones
	TargetDate       *time.Time `json:"target_date,omitempty"`
	CreatedBy        int        `json:"created_by"`
	Archived         bool       `json:"archived"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Milestone struct {
	ID         int       `json:"id"`
	ProjectID  int       `json:"project_id"`
	Title      string    `json:"title"`
	Weight     int       `json:"weight"`      // relative, positive
	OrderIndex int       `json:"order_index"` // dense, max+1 on append
	Progress   int       `json:"progress"`    // derived from checklist items
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ChecklistItem struct {
	ID          int        `json:"id"`
	MilestoneID int        `json:"milestone_id"`
	Title       string     `json:"title"`
	OrderIndex  int        `json:"order_index"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *int       `json:"completed_by,omitempty"`
}

type ProjectMember struct {
	ProjectID int    `json:"project_id"`
	MemberID  int    `json:"member_id"`
	Role      string `json:"role"` // open label: first_author, co_author, researcher, ...
}

type WeeklyGoal struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	MemberID  int       `json:"member_id"`
	Content   string    `json:"content"`
	WeekStart time.Time `json:"week_start"`
}
