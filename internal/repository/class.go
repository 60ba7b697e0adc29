package repository

import (
	"context"

	"homework-calendar/internal/domain"
)

// ClassRepository exposes persistence operations for Class rows.
type ClassRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, class *domain.Class) (int64, error)
	Get(ctx context.Context, id, ownerID int64) (*domain.Class, error)
	// Exists reports whether any class has the given id, regardless of owner.
	Exists(ctx context.Context, id int64) (bool, error)
	// List returns the owner's classes annotated with member assignment
	// counts, computed in a single grouped aggregate.
	List(ctx context.Context, ownerID int64, activeOnly bool) ([]domain.ClassWithCount, error)
	Update(ctx context.Context, id, ownerID int64, patch domain.ClassPatch) (*domain.Class, error)
	// DeleteWithDisposition removes the class and applies the disposition to
	// its member assignments in one transaction. A nil disposition is only
	// accepted when the class has no members.
	DeleteWithDisposition(ctx context.Context, id, ownerID int64, disposition *domain.Disposition) error
}
