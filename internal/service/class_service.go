package service

import (
	"context"
	"errors"
	"fmt"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
)

// classPageSize is the fixed page size for class detail assignment listings.
const classPageSize = 10

// ClassDetail is a class record plus one page of its assignments.
type ClassDetail struct {
	domain.Class
	Assignments         []domain.Assignment
	NumberOfAssignments int64
}

// ClassService coordinates class operations, all scoped to a single owner.
type ClassService interface {
	List(ctx context.Context, ownerID int64, activeOnly bool) ([]domain.ClassWithCount, error)
	Create(ctx context.Context, ownerID int64, name string) (*domain.ClassWithCount, error)
	// Detail returns the class plus the given 1-based page of its
	// assignments, ordered by due date descending, and the total member
	// count.
	Detail(ctx context.Context, id, ownerID int64, page int) (*ClassDetail, error)
	Update(ctx context.Context, id, ownerID int64, patch domain.ClassPatch) (*domain.Class, error)
	// Delete removes the class and applies the disposition to member
	// assignments atomically. Returns repository.ErrDispositionRequired when
	// members exist and no disposition is given.
	Delete(ctx context.Context, id, ownerID int64, disposition *domain.Disposition) error
}

type classService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
}

func NewClassService(classes repository.ClassRepository, assignments repository.AssignmentRepository) ClassService {
	return &classService{
		classes:     classes,
		assignments: assignments,
	}
}

func (s *classService) List(ctx context.Context, ownerID int64, activeOnly bool) ([]domain.ClassWithCount, error) {
	return s.classes.List(ctx, ownerID, activeOnly)
}

func (s *classService) Create(ctx context.Context, ownerID int64, name string) (*domain.ClassWithCount, error) {
	if name == "" {
		return nil, errors.New("class name is required")
	}

	class := &domain.Class{
		Name:    name,
		OwnerID: ownerID,
	}
	if _, err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	return &domain.ClassWithCount{Class: *class, NumberOfAssignments: 0}, nil
}

func (s *classService) Detail(ctx context.Context, id, ownerID int64, page int) (*ClassDetail, error) {
	if page < 1 {
		page = 1
	}

	class, err := s.classes.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, id, classPageSize, (page-1)*classPageSize)
	if err != nil {
		return nil, err
	}
	count, err := s.assignments.CountByClass(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ClassDetail{
		Class:               *class,
		Assignments:         assignments,
		NumberOfAssignments: count,
	}, nil
}

func (s *classService) Update(ctx context.Context, id, ownerID int64, patch domain.ClassPatch) (*domain.Class, error) {
	return s.classes.Update(ctx, id, ownerID, patch)
}

func (s *classService) Delete(ctx context.Context, id, ownerID int64, disposition *domain.Disposition) error {
	if disposition != nil {
		switch disposition.Action {
		case domain.DispositionDelete, domain.DispositionReassign:
		default:
			return fmt.Errorf("unknown disposition %q", disposition.Action)
		}
	}
	return s.classes.DeleteWithDisposition(ctx, id, ownerID, disposition)
}
