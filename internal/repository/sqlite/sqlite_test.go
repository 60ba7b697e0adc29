package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
)

func openTestDB(t *testing.T) (*sql.DB, repository.UserRepository, repository.ClassRepository, repository.AssignmentRepository) {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	classes := NewClassRepository(db)
	assignments := NewAssignmentRepository(db)

	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := classes.Init(ctx); err != nil {
		t.Fatalf("init classes: %v", err)
	}
	if err := assignments.Init(ctx); err != nil {
		t.Fatalf("init assignments: %v", err)
	}

	return db, users, classes, assignments
}

func seedUser(t *testing.T, users repository.UserRepository, username string) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), &domain.User{
		Username:     username,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

func seedClass(t *testing.T, classes repository.ClassRepository, ownerID int64, name string) int64 {
	t.Helper()
	id, err := classes.Create(context.Background(), &domain.Class{
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("seed class %s: %v", name, err)
	}
	return id
}

func seedAssignment(t *testing.T, assignments repository.AssignmentRepository, a domain.Assignment) int64 {
	t.Helper()
	if a.Type == "" {
		a.Type = domain.AssignmentTypeAssignment
	}
	id, err := assignments.Create(context.Background(), &a)
	if err != nil {
		t.Fatalf("seed assignment %s: %v", a.Title, err)
	}
	return id
}

func ptr(v int64) *int64 { return &v }
