// Package sweeper implements the scheduled deadline-notification pass. It is
// invoked externally (cron hitting the trigger endpoint) and must be safe to
// re-run any number of times within the same day.
package sweeper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/metrics"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/status"
)

type ProjectStore interface {
	FindActiveByTargetDate(ctx context.Context, targetDate time.Time, statuses []string) ([]model.Project, error)
}

type ProjectMemberStore interface {
	MemberIDsByProjectID(ctx context.Context, projectID int) ([]int, error)
}

type NotificationStore interface {
	ExistsDeadlineOn(ctx context.Context, memberID int, link string, day time.Time) (bool, error)
	InsertDeadline(ctx context.Context, memberID int, message, link string, day time.Time) (int, bool, error)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Locker is the redis fast-path dedup. It only short-circuits work; the
// uniqueness index behind NotificationStore is what actually guarantees
// at-most-one notification per (member, project, day).
type Locker interface {
	AcquireKey(ctx context.Context, key string) bool
	ReleaseKey(ctx context.Context, key string)
}

// Result is the summary returned to the trigger endpoint.
type Result struct {
	Success       bool     `json:"success"`
	Notifications int      `json:"notifications"`
	Timestamp     string   `json:"timestamp"`
	Details       []string `json:"details"`
}

type Sweeper struct {
	projects       ProjectStore
	projectMembers ProjectMemberStore
	notifications  NotificationStore
	publisher      EventPublisher // optional
	locker         Locker         // optional
	offsets        []int
	location       *time.Location
	now            func() time.Time
	logger         *zap.Logger
}

func New(
	projects ProjectStore,
	projectMembers ProjectMemberStore,
	notifications NotificationStore,
	publisher EventPublisher,
	locker Locker,
	offsets []int,
	location *time.Location,
	logger *zap.Logger,
) *Sweeper {
	if len(offsets) == 0 {
		offsets = []int{7, 3, 1, 0}
	}
	if location == nil {
		location = time.UTC
	}
	return &Sweeper{
		projects:       projects,
		projectMembers: projectMembers,
		notifications:  notifications,
		publisher:      publisher,
		locker:         locker,
		offsets:        offsets,
		location:       location,
		now:            time.Now,
		logger:         logger,
	}
}

// Run executes one sweep. Offsets are processed independently: a query
// failure for one offset is recorded in the details and the rest continue.
// The method never returns an error; failures are part of the Result.
func (s *Sweeper) Run(ctx context.Context) *Result {
	nowLocal := s.now().In(s.location)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, s.location)

	s.logger.Info("Deadline sweep started",
		zap.String("today", today.Format("2006-01-02")),
		zap.Ints("offsets", s.offsets),
	)

	result := &Result{
		Success:   true,
		Timestamp: nowLocal.Format(time.RFC3339),
	}
	active := status.ActiveStatuses()

	for _, offset := range s.offsets {
		created, err := s.sweepOffset(ctx, today, offset, active)
		if err != nil {
			// Isolate the failure; other offsets still get processed.
			result.Success = false
			result.Details = append(result.Details,
				fmt.Sprintf("D-%d: failed: %v", offset, err))
			s.logger.Error("Sweep offset failed",
				zap.Int("offset", offset),
				zap.Error(err),
			)
			continue
		}

		result.Notifications += created
		result.Details = append(result.Details,
			fmt.Sprintf("D-%d: %d notifications created", offset, created))
	}

	if result.Success {
		metrics.SweepRunCount.WithLabelValues("success").Inc()
	} else {
		metrics.SweepRunCount.WithLabelValues("partial").Inc()
	}

	s.logger.Info("Deadline sweep finished",
		zap.Int("notifications", result.Notifications),
		zap.Bool("success", result.Success),
	)
	return result
}

func (s *Sweeper) sweepOffset(ctx context.Context, today time.Time, offset int, activeStatuses []string) (int, error) {
	targetDate := today.AddDate(0, 0, offset)

	projects, err := s.projects.FindActiveByTargetDate(ctx, targetDate, activeStatuses)
	if err != nil {
		return 0, fmt.Errorf("query projects for %s: %w", targetDate.Format("2006-01-02"), err)
	}

	created := 0
	for _, p := range projects {
		memberIDs, err := s.projectMembers.MemberIDsByProjectID(ctx, p.ID)
		if err != nil {
			return created, fmt.Errorf("resolve members of project %d: %w", p.ID, err)
		}

		link := projectLink(p.ID)
		message := deadlineMessage(p.Title, offset)

		for _, memberID := range memberIDs {
			n, err := s.notifyMember(ctx, p, memberID, link, message, today, targetDate, offset)
			if err != nil {
				return created, err
			}
			created += n
		}
	}

	return created, nil
}

func (s *Sweeper) notifyMember(ctx context.Context, p model.Project, memberID int, link, message string, today, targetDate time.Time, offset int) (int, error) {
	var lockKey string
	if s.locker != nil {
		lockKey = fmt.Sprintf("sweep:%s:%d:%d", today.Format("2006-01-02"), p.ID, memberID)
		if !s.locker.AcquireKey(ctx, lockKey) {
			return 0, nil
		}
	}

	exists, err := s.notifications.ExistsDeadlineOn(ctx, memberID, link, today)
	if err != nil {
		if s.locker != nil {
			s.locker.ReleaseKey(ctx, lockKey)
		}
		return 0, fmt.Errorf("dedup check for member %d: %w", memberID, err)
	}
	if exists {
		return 0, nil
	}

	// The check above races with a concurrent sweep; the insert resolves the
	// race via the uniqueness index and reports inserted=false instead of
	// failing.
	id, inserted, err := s.notifications.InsertDeadline(ctx, memberID, message, link, today)
	if err != nil {
		// Release the fast-path key so a retry can attempt the insert again.
		if s.locker != nil {
			s.locker.ReleaseKey(ctx, lockKey)
		}
		return 0, fmt.Errorf("insert notification for member %d: %w", memberID, err)
	}
	if !inserted {
		return 0, nil
	}

	metrics.DeadlineNotificationCount.WithLabelValues(strconv.Itoa(offset)).Inc()

	if s.publisher != nil {
		payload := mq.DeadlineNotificationPayload{
			NotificationID: id,
			MemberID:       memberID,
			ProjectID:      p.ID,
			Message:        message,
			Link:           link,
			TargetDate:     targetDate.Format("2006-01-02"),
			DaysLeft:       offset,
			CreatedAt:      s.now(),
		}
		if err := s.publisher.Publish(mq.RoutingKeyDeadlineNotification, payload); err != nil {
			// Row is committed; delivery can lag. Do not fail the sweep.
			s.logger.Error("Failed to publish deadline notification event",
				zap.Int("notification_id", id),
				zap.Error(err),
			)
		}
	}

	return 1, nil
}

func projectLink(projectID int) string {
	return fmt.Sprintf("/projects/%d", projectID)
}

func deadlineMessage(title string, offset int) string {
	switch offset {
	case 0:
		return fmt.Sprintf("Project %q is due today", title)
	case 1:
		return fmt.Sprintf("Project %q is due tomorrow", title)
	default:
		return fmt.Sprintf("Project %q is due in %d days", title, offset)
	}
}
