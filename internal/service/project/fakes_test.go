package project_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

// memStore is a map-backed stand-in for the pgx repositories. It implements
// every store interface the project service and deleter consume, and can be
// told to fail a named operation to exercise partial-cascade paths.
type memStore struct {
	mu     sync.Mutex
	nextID int

	projects       map[int]*model.Project
	milestones     map[int]*model.Milestone
	items          map[int]*model.ChecklistItem
	members        map[int]*model.Member
	projectMembers map[string]*model.ProjectMember
	weeklyGoals    map[int]*model.WeeklyGoal

	failOn map[string]error
	ops    []string
}

func newMemStore() *memStore {
	return &memStore{
		projects:       make(map[int]*model.Project),
		milestones:     make(map[int]*model.Milestone),
		items:          make(map[int]*model.ChecklistItem),
		members:        make(map[int]*model.Member),
		projectMembers: make(map[string]*model.ProjectMember),
		weeklyGoals:    make(map[int]*model.WeeklyGoal),
		failOn:         make(map[string]error),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) step(op string) error {
	s.ops = append(s.ops, op)
	return s.failOn[op]
}

func pmKey(projectID, memberID int) string {
	return fmt.Sprintf("%d/%d", projectID, memberID)
}

// --- members ---

func (s *memStore) addMember(role string) *model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &model.Member{ID: s.id(), Name: "m", Email: fmt.Sprintf("m%d@lab.test", s.nextID), Role: role}
	s.members[m.ID] = m
	return m
}

func (s *memStore) findMember(ctx context.Context, id int) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[id], nil
}

// --- projects ---

func (s *memStore) insertProject(ctx context.Context, p *model.Project) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("project.insert"); err != nil {
		return 0, err
	}
	cp := *p
	cp.ID = s.id()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.projects[cp.ID] = &cp
	return cp.ID, nil
}

func (s *memStore) findProject(ctx context.Context, id int) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) listByMember(ctx context.Context, memberID int) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Project
	for _, p := range s.projects {
		if p.CreatedBy == memberID {
			out = append(out, *p)
			continue
		}
		if _, ok := s.projectMembers[pmKey(p.ID, memberID)]; ok {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) updateSubmissionStatus(ctx context.Context, id int, submissionStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("project %d not found", id)
	}
	p.SubmissionStatus = submissionStatus
	return nil
}

func (s *memStore) setArchived(ctx context.Context, id int, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("project %d not found", id)
	}
	p.Archived = archived
	return nil
}

func (s *memStore) updateOverallProgress(ctx context.Context, id, overallProgress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		p.OverallProgress = overallProgress
	}
	return nil
}

func (s *memStore) deleteProject(ctx context.Context, id int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("project.delete"); err != nil {
		return 0, err
	}
	if _, ok := s.projects[id]; !ok {
		return 0, nil
	}
	delete(s.projects, id)
	return 1, nil
}

// --- milestones ---

func (s *memStore) insertMilestone(ctx context.Context, m *model.Milestone) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.ID = s.id()
	s.milestones[cp.ID] = &cp
	return cp.ID, nil
}

func (s *memStore) findMilestone(ctx context.Context, id int) (*model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) milestonesByProject(ctx context.Context, projectID int) ([]model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Milestone
	for _, m := range s.milestones {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) countMilestones(ctx context.Context, projectID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.milestones {
		if m.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) milestoneIDs(ctx context.Context, projectID int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("milestone.ids"); err != nil {
		return nil, err
	}
	var ids []int
	for _, m := range s.milestones {
		if m.ProjectID == projectID {
			ids = append(ids, m.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *memStore) nextOrderIndex(ctx context.Context, projectID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, m := range s.milestones {
		if m.ProjectID == projectID && m.OrderIndex > max {
			max = m.OrderIndex
		}
	}
	return max + 1, nil
}

func (s *memStore) updateWeight(ctx context.Context, id, weight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[id]
	if !ok {
		return fmt.Errorf("milestone %d not found", id)
	}
	m.Weight = weight
	return nil
}

func (s *memStore) updateMilestoneProgress(ctx context.Context, id, prog int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.milestones[id]; ok {
		m.Progress = prog
	}
	return nil
}

func (s *memStore) deleteMilestone(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.milestones, id)
	return nil
}

func (s *memStore) deleteMilestonesByProject(ctx context.Context, projectID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("milestone.delete"); err != nil {
		return 0, err
	}
	var n int64
	for id, m := range s.milestones {
		if m.ProjectID == projectID {
			delete(s.milestones, id)
			n++
		}
	}
	return n, nil
}

// --- checklist items ---

func (s *memStore) insertItem(ctx context.Context, item *model.ChecklistItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	cp.ID = s.id()
	s.items[cp.ID] = &cp
	return cp.ID, nil
}

func (s *memStore) findItem(ctx context.Context, id int) (*model.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *memStore) itemsByMilestone(ctx context.Context, milestoneID int) ([]model.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChecklistItem
	for _, item := range s.items {
		if item.MilestoneID == milestoneID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) itemCounts(ctx context.Context, milestoneID int) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var completed, total int
	for _, item := range s.items {
		if item.MilestoneID == milestoneID {
			total++
			if item.IsCompleted {
				completed++
			}
		}
	}
	return completed, total, nil
}

func (s *memStore) setItemCompleted(ctx context.Context, id int, completed bool, memberID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("item %d not found", id)
	}
	item.IsCompleted = completed
	if completed {
		now := time.Now()
		item.CompletedAt = &now
		item.CompletedBy = &memberID
	} else {
		item.CompletedAt = nil
		item.CompletedBy = nil
	}
	return nil
}

func (s *memStore) deleteItemsByMilestone(ctx context.Context, milestoneID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("checklist.delete"); err != nil {
		return 0, err
	}
	var n int64
	for id, item := range s.items {
		if item.MilestoneID == milestoneID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

// --- project members ---

func (s *memStore) upsertProjectMember(ctx context.Context, pm *model.ProjectMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pm
	s.projectMembers[pmKey(pm.ProjectID, pm.MemberID)] = &cp
	return nil
}

func (s *memStore) projectMembersByProject(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ProjectMember
	for _, pm := range s.projectMembers {
		if pm.ProjectID == projectID {
			out = append(out, *pm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func (s *memStore) deleteProjectMembersByProject(ctx context.Context, projectID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("project_member.delete"); err != nil {
		return 0, err
	}
	var n int64
	for key, pm := range s.projectMembers {
		if pm.ProjectID == projectID {
			delete(s.projectMembers, key)
			n++
		}
	}
	return n, nil
}

// --- weekly goals ---

func (s *memStore) addWeeklyGoal(projectID, memberID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &model.WeeklyGoal{ID: s.id(), ProjectID: projectID, MemberID: memberID, Content: "goal"}
	s.weeklyGoals[g.ID] = g
}

func (s *memStore) deleteWeeklyGoalsByProject(ctx context.Context, projectID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.step("weekly_goal.delete"); err != nil {
		return 0, err
	}
	var n int64
	for id, g := range s.weeklyGoals {
		if g.ProjectID == projectID {
			delete(s.weeklyGoals, id)
			n++
		}
	}
	return n, nil
}

// Adapter views expose memStore through the service's store interfaces.

type fakeProjects struct{ s *memStore }

func (v fakeProjects) Insert(ctx context.Context, p *model.Project) (int, error) {
	return v.s.insertProject(ctx, p)
}
func (v fakeProjects) FindByID(ctx context.Context, id int) (*model.Project, error) {
	return v.s.findProject(ctx, id)
}
func (v fakeProjects) ListByMember(ctx context.Context, memberID int) ([]model.Project, error) {
	return v.s.listByMember(ctx, memberID)
}
func (v fakeProjects) UpdateSubmissionStatus(ctx context.Context, id int, submissionStatus string) error {
	return v.s.updateSubmissionStatus(ctx, id, submissionStatus)
}
func (v fakeProjects) SetArchived(ctx context.Context, id int, archived bool) error {
	return v.s.setArchived(ctx, id, archived)
}
func (v fakeProjects) UpdateOverallProgress(ctx context.Context, id, overallProgress int) error {
	return v.s.updateOverallProgress(ctx, id, overallProgress)
}
func (v fakeProjects) Delete(ctx context.Context, id int) (int64, error) {
	return v.s.deleteProject(ctx, id)
}

type fakeMilestones struct{ s *memStore }

func (v fakeMilestones) Insert(ctx context.Context, m *model.Milestone) (int, error) {
	return v.s.insertMilestone(ctx, m)
}
func (v fakeMilestones) FindByID(ctx context.Context, id int) (*model.Milestone, error) {
	return v.s.findMilestone(ctx, id)
}
func (v fakeMilestones) FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error) {
	return v.s.milestonesByProject(ctx, projectID)
}
func (v fakeMilestones) CountByProjectID(ctx context.Context, projectID int) (int, error) {
	return v.s.countMilestones(ctx, projectID)
}
func (v fakeMilestones) IDsByProjectID(ctx context.Context, projectID int) ([]int, error) {
	return v.s.milestoneIDs(ctx, projectID)
}
func (v fakeMilestones) NextOrderIndex(ctx context.Context, projectID int) (int, error) {
	return v.s.nextOrderIndex(ctx, projectID)
}
func (v fakeMilestones) UpdateWeight(ctx context.Context, id, weight int) error {
	return v.s.updateWeight(ctx, id, weight)
}
func (v fakeMilestones) UpdateProgress(ctx context.Context, id, prog int) error {
	return v.s.updateMilestoneProgress(ctx, id, prog)
}
func (v fakeMilestones) Delete(ctx context.Context, id int) error {
	return v.s.deleteMilestone(ctx, id)
}
func (v fakeMilestones) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	return v.s.deleteMilestonesByProject(ctx, projectID)
}

type fakeChecklist struct{ s *memStore }

func (v fakeChecklist) Insert(ctx context.Context, item *model.ChecklistItem) (int, error) {
	return v.s.insertItem(ctx, item)
}
func (v fakeChecklist) FindByID(ctx context.Context, id int) (*model.ChecklistItem, error) {
	return v.s.findItem(ctx, id)
}
func (v fakeChecklist) FindByMilestoneID(ctx context.Context, milestoneID int) ([]model.ChecklistItem, error) {
	return v.s.itemsByMilestone(ctx, milestoneID)
}
func (v fakeChecklist) CountsByMilestoneID(ctx context.Context, milestoneID int) (int, int, error) {
	return v.s.itemCounts(ctx, milestoneID)
}
func (v fakeChecklist) SetCompleted(ctx context.Context, id int, completed bool, memberID int) error {
	return v.s.setItemCompleted(ctx, id, completed, memberID)
}
func (v fakeChecklist) DeleteByMilestoneID(ctx context.Context, milestoneID int) (int64, error) {
	return v.s.deleteItemsByMilestone(ctx, milestoneID)
}

type fakeProjectMembers struct{ s *memStore }

func (v fakeProjectMembers) Upsert(ctx context.Context, pm *model.ProjectMember) error {
	return v.s.upsertProjectMember(ctx, pm)
}
func (v fakeProjectMembers) ListByProjectID(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	return v.s.projectMembersByProject(ctx, projectID)
}
func (v fakeProjectMembers) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	return v.s.deleteProjectMembersByProject(ctx, projectID)
}

type fakeWeeklyGoals struct{ s *memStore }

func (v fakeWeeklyGoals) DeleteByProjectID(ctx context.Context, projectID int) (int64, error) {
	return v.s.deleteWeeklyGoalsByProject(ctx, projectID)
}

type fakeMembers struct{ s *memStore }

func (v fakeMembers) FindByID(ctx context.Context, id int) (*model.Member, error) {
	return v.s.findMember(ctx, id)
}
