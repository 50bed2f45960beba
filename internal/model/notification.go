package model

import "time"

const (
	NotificationTypeDeadline = "deadline"
)

type Notification struct {
	ID        int       `json:"id"`
	MemberID  int       `json:"member_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Link      string    `json:"link"` // canonical page of the related entity
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationDelivery is an audit row written by the worker after a
// notification.deadline event has been handled.
type NotificationDelivery struct {
	ID             int       `json:"id"`
	NotificationID int       `json:"notification_id"`
	MemberID       int       `json:"member_id"`
	Channel        string    `json:"channel"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
