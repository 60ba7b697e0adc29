package domain

type AssignmentType string

const (
	AssignmentTypeAssignment AssignmentType = "assignment"
	AssignmentTypeTestQuiz   AssignmentType = "test/quiz"
)

// ValidAssignmentType reports whether t is one of the known assignment types.
func ValidAssignmentType(t AssignmentType) bool {
	return t == AssignmentTypeAssignment || t == AssignmentTypeTestQuiz
}

// Assignment represents a single piece of homework tracked by the system.
// All dates are epoch milliseconds. A nil ClassID means the assignment is
// unfiled; a nil CompletionDate means it is incomplete.
type Assignment struct {
	ID                         int64
	Title                      string
	Description                string
	Type                       AssignmentType
	ClassID                    *int64
	OwnerID                    int64
	StartDate                  int64
	DueDate                    int64
	EstimatedCompletionMinutes int
	CompletionDate             *int64
	CreationDate               int64
}

// AssignmentPatch carries a partial update. Nil pointer fields are left
// unchanged. Completion is tri-state: when set, an explicit null clears the
// completion date and marks the assignment incomplete again.
type AssignmentPatch struct {
	Title       *string
	Description *string
	StartDate   *int64
	DueDate     *int64
	Completion  OptMillis
}

// Empty reports whether the patch would change nothing.
func (p AssignmentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.DueDate == nil && !p.Completion.Set
}
