package sweeper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
)

// The sweep is pinned to a fixed clock so target-date arithmetic is
// deterministic regardless of when the tests run.
var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeProjects struct {
	projects []model.Project
	err      error
	// failDate makes only the query for one target date fail.
	failDate string
}

func (f *fakeProjects) FindActiveByTargetDate(ctx context.Context, targetDate time.Time, statuses []string) ([]model.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	day := targetDate.Format("2006-01-02")
	if day == f.failDate {
		return nil, errors.New("query timeout")
	}
	allowed := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	var out []model.Project
	for _, p := range f.projects {
		if p.Archived || p.TargetDate == nil || !allowed[p.Status] {
			continue
		}
		if p.TargetDate.Format("2006-01-02") == day {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProjectMembers struct {
	byProject map[int][]int
	err       error
}

func (f *fakeProjectMembers) MemberIDsByProjectID(ctx context.Context, projectID int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byProject[projectID], nil
}

type storedNotification struct {
	memberID int
	message  string
	link     string
	day      string
}

type fakeNotifications struct {
	rows      []storedNotification
	nextID    int
	existsErr error
	insertErr error
}

func (f *fakeNotifications) ExistsDeadlineOn(ctx context.Context, memberID int, link string, day time.Time) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, row := range f.rows {
		if row.memberID == memberID && row.link == link && row.day == day.Format("2006-01-02") {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) InsertDeadline(ctx context.Context, memberID int, message, link string, day time.Time) (int, bool, error) {
	if f.insertErr != nil {
		return 0, false, f.insertErr
	}
	// Mirrors the uniqueness index on (member_id, type, link, created_day):
	// a duplicate insert reports inserted=false.
	for _, row := range f.rows {
		if row.memberID == memberID && row.link == link && row.day == day.Format("2006-01-02") {
			return 0, false, nil
		}
	}
	f.nextID++
	f.rows = append(f.rows, storedNotification{
		memberID: memberID,
		message:  message,
		link:     link,
		day:      day.Format("2006-01-02"),
	})
	return f.nextID, true, nil
}

type fakeLocker struct {
	held map[string]bool
}

func (l *fakeLocker) AcquireKey(ctx context.Context, key string) bool {
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false
	}
	l.held[key] = true
	return true
}

func (l *fakeLocker) ReleaseKey(ctx context.Context, key string) {
	delete(l.held, key)
}

type capturedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	p.events = append(p.events, capturedEvent{routingKey, payload})
	return nil
}

func dateAt(offset int) *time.Time {
	d := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func newTestSweeper(projects ProjectStore, members ProjectMemberStore, notifications NotificationStore, publisher EventPublisher, locker Locker) *Sweeper {
	s := New(projects, members, notifications, publisher, locker, nil, time.UTC, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func TestRun_NotifiesEveryMemberOnce(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "Fieldwork study", Status: "in_progress", TargetDate: dateAt(3)},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{1: {10, 11, 12}}}
	notifications := &fakeNotifications{}
	s := newTestSweeper(projects, members, notifications, nil, nil)

	result := s.Run(context.Background())
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.Notifications != 3 {
		t.Errorf("created %d notifications, want 3", result.Notifications)
	}
	if len(notifications.rows) != 3 {
		t.Fatalf("stored %d rows, want 3", len(notifications.rows))
	}
	for _, row := range notifications.rows {
		if row.message != `Project "Fieldwork study" is due in 3 days` {
			t.Errorf("message = %q", row.message)
		}
		if row.link != "/projects/1" {
			t.Errorf("link = %q, want /projects/1", row.link)
		}
	}
}

func TestRun_IsIdempotentWithinADay(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "P", Status: "preparing", TargetDate: dateAt(7)},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{1: {10, 11}}}
	notifications := &fakeNotifications{}
	s := newTestSweeper(projects, members, notifications, nil, nil)
	ctx := context.Background()

	first := s.Run(ctx)
	if first.Notifications != 2 {
		t.Fatalf("first run created %d, want 2", first.Notifications)
	}

	second := s.Run(ctx)
	if !second.Success {
		t.Errorf("second run not successful: %+v", second)
	}
	if second.Notifications != 0 {
		t.Errorf("second run created %d notifications, want 0", second.Notifications)
	}
	if len(notifications.rows) != 2 {
		t.Errorf("stored %d rows after two runs, want 2", len(notifications.rows))
	}
}

func TestRun_MessageWording(t *testing.T) {
	cases := []struct {
		offset int
		want   string
	}{
		{0, `Project "P" is due today`},
		{1, `Project "P" is due tomorrow`},
		{7, `Project "P" is due in 7 days`},
	}
	for _, tc := range cases {
		projects := &fakeProjects{projects: []model.Project{
			{ID: 1, Title: "P", Status: "in_progress", TargetDate: dateAt(tc.offset)},
		}}
		members := &fakeProjectMembers{byProject: map[int][]int{1: {10}}}
		notifications := &fakeNotifications{}
		s := newTestSweeper(projects, members, notifications, nil, nil)

		s.Run(context.Background())
		if len(notifications.rows) != 1 {
			t.Fatalf("offset %d: stored %d rows, want 1", tc.offset, len(notifications.rows))
		}
		if got := notifications.rows[0].message; got != tc.want {
			t.Errorf("offset %d: message = %q, want %q", tc.offset, got, tc.want)
		}
	}
}

func TestRun_SkipsTerminalAndArchivedProjects(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "accepted", Status: "accepted", TargetDate: dateAt(3)},
		{ID: 2, Title: "published", Status: "published", TargetDate: dateAt(3)},
		{ID: 3, Title: "archived", Status: "in_progress", Archived: true, TargetDate: dateAt(3)},
		{ID: 4, Title: "dropped", Status: "dropped", TargetDate: dateAt(3)},
		{ID: 5, Title: "live", Status: "revision", TargetDate: dateAt(3)},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{
		1: {10}, 2: {10}, 3: {10}, 4: {10}, 5: {10},
	}}
	notifications := &fakeNotifications{}
	s := newTestSweeper(projects, members, notifications, nil, nil)

	result := s.Run(context.Background())
	if result.Notifications != 1 {
		t.Errorf("created %d notifications, want 1 (only the live project)", result.Notifications)
	}
	if len(notifications.rows) != 1 || notifications.rows[0].link != "/projects/5" {
		t.Errorf("rows = %+v, want one for project 5", notifications.rows)
	}
}

func TestRun_OffsetFailureIsIsolated(t *testing.T) {
	projects := &fakeProjects{
		projects: []model.Project{
			{ID: 1, Title: "A", Status: "in_progress", TargetDate: dateAt(7)},
			{ID: 2, Title: "B", Status: "in_progress", TargetDate: dateAt(1)},
		},
		failDate: dateAt(3).Format("2006-01-02"),
	}
	members := &fakeProjectMembers{byProject: map[int][]int{1: {10}, 2: {11}}}
	notifications := &fakeNotifications{}
	s := newTestSweeper(projects, members, notifications, nil, nil)

	result := s.Run(context.Background())
	if result.Success {
		t.Error("result.Success = true despite a failed offset")
	}
	if result.Notifications != 2 {
		t.Errorf("created %d notifications, want 2 (D-7 and D-1 still processed)", result.Notifications)
	}

	var failedDetail bool
	for _, d := range result.Details {
		if strings.HasPrefix(d, "D-3: failed:") {
			failedDetail = true
		}
	}
	if !failedDetail {
		t.Errorf("details %v missing the D-3 failure entry", result.Details)
	}
}

func TestRun_PublishesEventPerNotification(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 7, Title: "P", Status: "under_review", TargetDate: dateAt(1)},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{7: {42}}}
	notifications := &fakeNotifications{}
	publisher := &fakePublisher{}
	s := newTestSweeper(projects, members, notifications, publisher, nil)

	s.Run(context.Background())

	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	ev := publisher.events[0]
	if ev.routingKey != mq.RoutingKeyDeadlineNotification {
		t.Errorf("routing key = %q, want %q", ev.routingKey, mq.RoutingKeyDeadlineNotification)
	}
	payload, ok := ev.payload.(mq.DeadlineNotificationPayload)
	if !ok {
		t.Fatalf("payload type %T", ev.payload)
	}
	if payload.MemberID != 42 || payload.ProjectID != 7 || payload.DaysLeft != 1 {
		t.Errorf("payload = %+v", payload)
	}
	if payload.TargetDate != dateAt(1).Format("2006-01-02") {
		t.Errorf("payload target date = %q", payload.TargetDate)
	}
}

func TestRun_LockerShortCircuitsAndReleasesOnFailure(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "P", Status: "in_progress", TargetDate: dateAt(0)},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{1: {10}}}
	notifications := &fakeNotifications{insertErr: errors.New("deadlock")}
	locker := &fakeLocker{}
	s := newTestSweeper(projects, members, notifications, nil, locker)
	ctx := context.Background()

	result := s.Run(ctx)
	if result.Success {
		t.Error("run reported success despite insert failure")
	}
	// The fast-path key must not stay held after a failed insert, so a retry
	// reaches the store again.
	if len(locker.held) != 0 {
		t.Fatalf("locker still holds %d keys after failure", len(locker.held))
	}

	notifications.insertErr = nil
	retry := s.Run(ctx)
	if !retry.Success || retry.Notifications != 1 {
		t.Errorf("retry = %+v, want 1 notification", retry)
	}
}

func TestRun_DedupDayFollowsSweepTimezone(t *testing.T) {
	// 02:00 UTC on March 10 is still March 9 in UTC-5. The day stored with
	// the notification must be the sweep timezone's day, not the instant's
	// UTC date.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	localToday := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	target := localToday.AddDate(0, 0, 3)

	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "P", Status: "in_progress", TargetDate: &target},
	}}
	members := &fakeProjectMembers{byProject: map[int][]int{1: {10}}}
	notifications := &fakeNotifications{}
	s := New(projects, members, notifications, nil, nil, nil, loc, zap.NewNop())
	s.now = func() time.Time { return now }

	result := s.Run(context.Background())
	if result.Notifications != 1 {
		t.Fatalf("created %d notifications, want 1", result.Notifications)
	}
	if got := notifications.rows[0].day; got != "2026-03-09" {
		t.Errorf("dedup day = %s, want 2026-03-09", got)
	}
}

func TestRun_MemberResolutionFailureRecorded(t *testing.T) {
	projects := &fakeProjects{projects: []model.Project{
		{ID: 1, Title: "P", Status: "in_progress", TargetDate: dateAt(3)},
	}}
	members := &fakeProjectMembers{err: errors.New("policy violation")}
	notifications := &fakeNotifications{}
	s := newTestSweeper(projects, members, notifications, nil, nil)

	result := s.Run(context.Background())
	if result.Success {
		t.Error("result.Success = true despite member resolution failure")
	}
	if result.Notifications != 0 {
		t.Errorf("created %d notifications, want 0", result.Notifications)
	}
}
