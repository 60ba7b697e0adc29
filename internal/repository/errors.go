package repository

import "errors"

var (
	// ErrNotFound covers both a missing row and an ownership mismatch; the
	// two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrDispositionRequired is returned when deleting a class that still has
	// member assignments without stating what happens to them.
	ErrDispositionRequired = errors.New("class still has assignments; a disposition is required")
	// ErrTargetClassMissing is returned when a reassignment target does not
	// exist (or is the class being deleted).
	ErrTargetClassMissing = errors.New("reassignment target class does not exist")
)
