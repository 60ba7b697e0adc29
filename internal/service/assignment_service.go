package service

import (
	"context"
	"errors"
	"time"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
)

var (
	// ErrInvalidAssignmentType is returned when the type is not one of the
	// known enum values.
	ErrInvalidAssignmentType = errors.New("invalid assignment type")
	// ErrClassNotFound is returned when a referenced class id does not exist.
	ErrClassNotFound = errors.New("class not found")
)

// CreateAssignmentInput carries the client-supplied fields for a new
// assignment. The owner always comes from the authenticated session.
type CreateAssignmentInput struct {
	Title                      string
	Description                string
	Type                       domain.AssignmentType
	ClassID                    *int64
	EstimatedCompletionMinutes int
	StartDate                  int64
	DueDate                    int64
}

// AssignmentService coordinates assignment operations, all scoped to a single
// owner.
type AssignmentService interface {
	// ListWindow returns incomplete assignments due strictly inside
	// (start, end), followed by completed assignments due between the first
	// day of the current month and end, ordered by completion date
	// descending. Incomplete work surfaces regardless of staleness within
	// the window; completed work is only recent history.
	ListWindow(ctx context.Context, ownerID, start, end int64) ([]domain.Assignment, error)
	// ListMonth returns assignments due strictly inside the given calendar
	// month (1-based).
	ListMonth(ctx context.Context, ownerID int64, year, month int, completedOnly bool) ([]domain.Assignment, error)
	Create(ctx context.Context, ownerID int64, input CreateAssignmentInput) (*domain.Assignment, error)
	// Update applies a partial patch to the owner's assignment. Zero rows
	// affected surfaces as repository.ErrNotFound; an empty patch is a no-op
	// success.
	Update(ctx context.Context, id, ownerID int64, patch domain.AssignmentPatch) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	now         func() time.Time
}

func NewAssignmentService(assignments repository.AssignmentRepository, classes repository.ClassRepository) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		classes:     classes,
		now:         time.Now,
	}
}

func (s *assignmentService) ListWindow(ctx context.Context, ownerID, start, end int64) ([]domain.Assignment, error) {
	incomplete, err := s.assignments.ListIncompleteDueBetween(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).UnixMilli()
	completed, err := s.assignments.ListCompletedDueBetween(ctx, ownerID, monthStart, end)
	if err != nil {
		return nil, err
	}

	return append(incomplete, completed...), nil
}

func (s *assignmentService) ListMonth(ctx context.Context, ownerID int64, year, month int, completedOnly bool) ([]domain.Assignment, error) {
	first, last := monthBounds(year, month)
	return s.assignments.ListDueBetween(ctx, ownerID, first, last, completedOnly)
}

func (s *assignmentService) Create(ctx context.Context, ownerID int64, input CreateAssignmentInput) (*domain.Assignment, error) {
	if !domain.ValidAssignmentType(input.Type) {
		return nil, ErrInvalidAssignmentType
	}
	if input.ClassID != nil {
		exists, err := s.classes.Exists(ctx, *input.ClassID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrClassNotFound
		}
	}

	assignment := &domain.Assignment{
		Title:                      input.Title,
		Description:                input.Description,
		Type:                       input.Type,
		ClassID:                    input.ClassID,
		OwnerID:                    ownerID,
		StartDate:                  input.StartDate,
		DueDate:                    input.DueDate,
		EstimatedCompletionMinutes: input.EstimatedCompletionMinutes,
	}

	if _, err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) Update(ctx context.Context, id, ownerID int64, patch domain.AssignmentPatch) error {
	if patch.Empty() {
		return nil
	}

	affected, err := s.assignments.UpdateFields(ctx, id, ownerID, patch)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// monthBounds returns the epoch-ms timestamps of the first and last day of
// the given 1-based month. Day zero of the following month is the last day of
// this one; time.Date normalizes it, handling month length and year rollover.
func monthBounds(year, month int) (int64, int64) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.Local)
	return first.UnixMilli(), last.UnixMilli()
}
