// Package progress derives completion percentages from milestone weights and
// checklist state. All functions are pure so they can be tested without a
// database.
package progress

import "math"

// MilestoneInput is the slice of a milestone the calculator needs.
type MilestoneInput struct {
	Weight   int
	Progress int // 0-100
}

// Overall computes the weighted overall progress of a project.
//
//	overall = round(Σ weight_i × progress_i / Σ weight_i)
//
// A project with no milestones, or whose weights sum to zero, has progress 0.
func Overall(milestones []MilestoneInput) int {
	if len(milestones) == 0 {
		return 0
	}

	var weightSum, weighted int
	for _, m := range milestones {
		weightSum += m.Weight
		weighted += m.Weight * m.Progress
	}
	if weightSum == 0 {
		return 0
	}

	return clamp(int(math.Round(float64(weighted) / float64(weightSum))))
}

// Milestone computes a milestone's progress from its checklist counts.
// A milestone with no checklist items has progress 0.
func Milestone(completed, total int) int {
	if total == 0 {
		return 0
	}
	return clamp(int(math.Round(100 * float64(completed) / float64(total))))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
