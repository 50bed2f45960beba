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

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// InsertDeadline inserts a deadline notification for the given calendar day.
// The uniqueness index on (member_id, type, link, created_day) makes the
// insert a no-op when the member already has one for this project that day,
// which keeps overlapping sweep invocations from producing duplicates. The
// day is computed by the caller in the sweep timezone. Returns
// (0, false, nil) when the row already existed.
func (r *NotificationRepository) InsertDeadline(ctx context.Context, memberID int, message, link string, day time.Time) (int, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("insert", "notifications", time.Since(start))
	}()

	query := `
        INSERT INTO notifications (member_id, type, message, link, is_read, created_day)
        VALUES ($1, $2, $3, $4, FALSE, $5)
        ON CONFLICT (member_id, type, link, created_day) DO NOTHING
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, memberID, model.NotificationTypeDeadline, message, link, day).Scan(&id)
	if err == pgx.ErrNoRows {
		// Conflict: an identical notification already exists today.
		return 0, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to insert deadline notification",
			zap.Int("member_id", memberID),
			zap.String("link", link),
			zap.Error(err),
		)
		return 0, false, err
	}

	r.logger.Info("Deadline notification inserted",
		zap.Int("id", id),
		zap.Int("member_id", memberID),
		zap.String("link", link),
	)
	return id, true, nil
}

// ExistsDeadlineOn reports whether the member already has a deadline
// notification for the given link on the given calendar day.
func (r *NotificationRepository) ExistsDeadlineOn(ctx context.Context, memberID int, link string, day time.Time) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE member_id = $1 AND type = $2 AND link = $3 AND created_day = $4
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, memberID, model.NotificationTypeDeadline, link, day).Scan(&exists)
	return exists, err
}

func (r *NotificationRepository) ListByMemberID(ctx context.Context, memberID int) ([]model.Notification, error) {
	query := `
        SELECT id, member_id, type, message, link, is_read, created_at
        FROM notifications
        WHERE member_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.MemberID,
			&n.Type,
			&n.Message,
			&n.Link,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, memberID int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND member_id = $2`,
		id, memberID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
