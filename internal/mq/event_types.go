package mq

import "time"

// Routing keys published on the lab.events exchange.
const (
	RoutingKeyDeadlineNotification = "notification.deadline"
	RoutingKeyProjectDeleted       = "project.deleted"
)

// DeadlineNotificationPayload is published after the sweeper inserts a
// deadline notification row.
type DeadlineNotificationPayload struct {
	NotificationID int       `json:"notification_id"`
	MemberID       int       `json:"member_id"`
	ProjectID      int       `json:"project_id"`
	Message        string    `json:"message"`
	Link           string    `json:"link"`
	TargetDate     string    `json:"target_date"` // YYYY-MM-DD
	DaysLeft       int       `json:"days_left"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectDeletedPayload is published after a cascading delete completes.
type ProjectDeletedPayload struct {
	ProjectID int       `json:"project_id"`
	DeletedBy int       `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}
