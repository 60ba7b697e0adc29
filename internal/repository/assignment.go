package repository

import (
	"context"

	"homework-calendar/internal/domain"
)

// AssignmentRepository exposes persistence operations for Assignment rows.
// Every query is scoped to a single owner; date bounds are epoch milliseconds
// and compared strictly (after < due_date < before).
type AssignmentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, assignment *domain.Assignment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Assignment, error)
	ListDueBetween(ctx context.Context, ownerID, after, before int64, completedOnly bool) ([]domain.Assignment, error)
	ListIncompleteDueBetween(ctx context.Context, ownerID, after, before int64) ([]domain.Assignment, error)
	ListCompletedDueBetween(ctx context.Context, ownerID, after, before int64) ([]domain.Assignment, error)
	ListByClass(ctx context.Context, classID int64, limit, offset int) ([]domain.Assignment, error)
	CountByClass(ctx context.Context, classID int64) (int64, error)
	UpdateFields(ctx context.Context, id, ownerID int64, patch domain.AssignmentPatch) (int64, error)
}
