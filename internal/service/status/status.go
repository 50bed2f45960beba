package status

import "fmt"

// Project lifecycle statuses.
const (
	Preparing   = "preparing"
	InProgress  = "in_progress"
	UnderReview = "under_review"
	Revision    = "revision"
	Accepted    = "accepted"
	Published   = "published"
)

// Submission statuses of the manuscript, independent of milestone progress.
const (
	NotSubmitted   = "not_submitted"
	Submitted      = "submitted"
	SubUnderReview = "under_review"
	UnderRevision  = "under_revision"
	Resubmitted    = "resubmitted"
	Under2ndReview = "under_2nd_review"
	MajorRevision  = "major_revision"
	SubAccepted    = "accepted"
	Rejected       = "rejected"
	InPress        = "in_press"
	SubPublished   = "published"
)

var submissionStatuses = map[string]bool{
	NotSubmitted:   true,
	Submitted:      true,
	SubUnderReview: true,
	UnderRevision:  true,
	Resubmitted:    true,
	Under2ndReview: true,
	MajorRevision:  true,
	SubAccepted:    true,
	Rejected:       true,
	InPress:        true,
	SubPublished:   true,
}

// Lifecycle statuses for which deadline sweeps still fire. Terminal
// statuses (accepted, published) are excluded.
var activeStatuses = []string{Preparing, InProgress, UnderReview, Revision}

var archivableStatuses = map[string]bool{
	SubAccepted:  true,
	InPress:      true,
	SubPublished: true,
}

// IsValidSubmissionStatus reports whether s is part of the fixed submission
// vocabulary. Transitions themselves are permissive: editors move papers
// back and forth, so any valid value may follow any other.
func IsValidSubmissionStatus(s string) bool {
	return submissionStatuses[s]
}

// ActiveStatuses returns the lifecycle statuses eligible for deadline
// notifications.
func ActiveStatuses() []string {
	out := make([]string, len(activeStatuses))
	copy(out, activeStatuses)
	return out
}

// CanArchive reports whether a project with the given submission status may
// be archived.
func CanArchive(submissionStatus string) bool {
	return archivableStatuses[submissionStatus]
}

// ValidateArchive returns a validation error when the submission status does
// not permit archiving.
func ValidateArchive(submissionStatus string) error {
	if !CanArchive(submissionStatus) {
		return fmt.Errorf("cannot archive project with submission status %q: only accepted, in_press or published projects can be archived", submissionStatus)
	}
	return nil
}
