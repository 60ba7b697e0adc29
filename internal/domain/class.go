package domain

// Class groups assignments for one user. A nil ArchiveDate means the class is
// active.
type Class struct {
	ID           int64
	Name         string
	OwnerID      int64
	ArchiveDate  *int64
	CreationDate int64
}

// ClassWithCount annotates a class with its member assignment count.
type ClassWithCount struct {
	Class
	NumberOfAssignments int64
}

// ClassPatch carries a partial class update. ArchiveDate is tri-state: an
// explicit null un-archives the class.
type ClassPatch struct {
	Name        *string
	ArchiveDate OptMillis
}

func (p ClassPatch) Empty() bool {
	return p.Name == nil && !p.ArchiveDate.Set
}

type DispositionAction string

const (
	DispositionDelete   DispositionAction = "delete"
	DispositionReassign DispositionAction = "reassignToClass"
)

// Disposition states what happens to a deleted class's assignments: delete
// them, or repoint them at TargetClassID (nil target unfiles them).
type Disposition struct {
	Action        DispositionAction
	TargetClassID *int64
}
