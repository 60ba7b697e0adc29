package sqlite

import (
	"context"
	"errors"
	"testing"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
)

func TestClassList_GroupedCounts(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")

	math := seedClass(t, classes, owner, "Math")
	english := seedClass(t, classes, owner, "English")

	seedAssignment(t, assignments, domain.Assignment{Title: "hw1", OwnerID: owner, ClassID: ptr(math), DueDate: 100})
	seedAssignment(t, assignments, domain.Assignment{Title: "hw2", OwnerID: owner, ClassID: ptr(math), DueDate: 200})
	seedAssignment(t, assignments, domain.Assignment{Title: "unfiled", OwnerID: owner, DueDate: 300})

	got, err := classes.List(ctx, owner, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(got))
	}
	counts := map[int64]int64{}
	for _, cls := range got {
		counts[cls.ID] = cls.NumberOfAssignments
	}
	if counts[math] != 2 || counts[english] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestClassList_ActiveOnlyExcludesArchived(t *testing.T) {
	_, users, classes, _ := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")

	seedClass(t, classes, owner, "Math")
	archived := seedClass(t, classes, owner, "Old History")
	if _, err := classes.Update(ctx, archived, owner, domain.ClassPatch{
		ArchiveDate: domain.OptMillis{Set: true, Value: ptr(12345)},
	}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	got, err := classes.List(ctx, owner, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Math" {
		t.Fatalf("expected only the active class, got %+v", got)
	}
}

func TestClassList_OwnerScoped(t *testing.T) {
	_, users, classes, _ := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	seedClass(t, classes, alice, "Math")
	seedClass(t, classes, bob, "Chemistry")

	got, err := classes.List(ctx, alice, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Math" {
		t.Fatalf("expected only alice's class, got %+v", got)
	}
}

func TestClassUpdate_RenameAndClearArchive(t *testing.T) {
	_, users, classes, _ := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")

	name := "Advanced Math"
	updated, err := classes.Update(ctx, id, owner, domain.ClassPatch{
		Name:        &name,
		ArchiveDate: domain.OptMillis{Set: true, Value: ptr(999)},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Advanced Math" || updated.ArchiveDate == nil || *updated.ArchiveDate != 999 {
		t.Fatalf("unexpected class after update: %+v", updated)
	}

	updated, err = classes.Update(ctx, id, owner, domain.ClassPatch{
		ArchiveDate: domain.OptMillis{Set: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if updated.ArchiveDate != nil {
		t.Fatalf("expected archive date cleared, got %v", *updated.ArchiveDate)
	}
}

func TestClassUpdate_NotOwnerIsNotFound(t *testing.T) {
	_, users, classes, _ := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	id := seedClass(t, classes, alice, "Math")

	name := "hijacked"
	if _, err := classes.Update(ctx, id, bob, domain.ClassPatch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cls, err := classes.Get(ctx, id, alice)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cls.Name != "Math" {
		t.Fatalf("row mutated by non-owner: %+v", cls)
	}
}

func TestClassDelete_EmptyClassNeedsNoDisposition(t *testing.T) {
	_, users, classes, _ := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")

	if err := classes.DeleteWithDisposition(ctx, id, owner, nil); err != nil {
		t.Fatalf("delete empty class: %v", err)
	}
	if _, err := classes.Get(ctx, id, owner); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected class gone, got %v", err)
	}
}

func TestClassDelete_MembersWithoutDispositionRefused(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")
	seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: owner, ClassID: ptr(id), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, id, owner, nil)
	if !errors.Is(err, repository.ErrDispositionRequired) {
		t.Fatalf("expected ErrDispositionRequired, got %v", err)
	}

	// refusal must leave everything in place
	if _, err := classes.Get(ctx, id, owner); err != nil {
		t.Fatalf("class should survive refused delete: %v", err)
	}
	count, _ := assignments.CountByClass(ctx, id)
	if count != 1 {
		t.Fatalf("assignments should survive refused delete, count=%d", count)
	}
}

func TestClassDelete_DispositionDelete(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")
	aid := seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: owner, ClassID: ptr(id), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, id, owner, &domain.Disposition{Action: domain.DispositionDelete})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := classes.Get(ctx, id, owner); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected class gone, got %v", err)
	}
	if _, err := assignments.Get(ctx, aid); err == nil {
		t.Fatal("expected member assignment gone")
	}
}

func TestClassDelete_ReassignToNullUnfiles(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")
	aid := seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: owner, ClassID: ptr(id), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, id, owner, &domain.Disposition{Action: domain.DispositionReassign})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := assignments.Get(ctx, aid)
	if err != nil {
		t.Fatalf("assignment should persist: %v", err)
	}
	if got.ClassID != nil {
		t.Fatalf("expected unfiled assignment, got class %d", *got.ClassID)
	}
}

func TestClassDelete_ReassignToTarget(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	math := seedClass(t, classes, owner, "Math")
	science := seedClass(t, classes, owner, "Science")
	aid := seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: owner, ClassID: ptr(math), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, math, owner, &domain.Disposition{
		Action:        domain.DispositionReassign,
		TargetClassID: ptr(science),
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, _ := assignments.Get(ctx, aid)
	if got.ClassID == nil || *got.ClassID != science {
		t.Fatalf("expected assignment moved to %d, got %+v", science, got.ClassID)
	}
	count, _ := assignments.CountByClass(ctx, math)
	if count != 0 {
		t.Fatalf("expected no assignments referencing the deleted class, got %d", count)
	}
}

func TestClassDelete_ReassignToMissingTargetAborts(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedClass(t, classes, owner, "Math")
	seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: owner, ClassID: ptr(id), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, id, owner, &domain.Disposition{
		Action:        domain.DispositionReassign,
		TargetClassID: ptr(int64(9999)),
	})
	if !errors.Is(err, repository.ErrTargetClassMissing) {
		t.Fatalf("expected ErrTargetClassMissing, got %v", err)
	}

	// transaction must roll the class delete back
	if _, err := classes.Get(ctx, id, owner); err != nil {
		t.Fatalf("class should survive aborted delete: %v", err)
	}
}

func TestClassDelete_NotOwnerIsBenignNotFound(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	id := seedClass(t, classes, alice, "Math")
	seedAssignment(t, assignments, domain.Assignment{Title: "hw", OwnerID: alice, ClassID: ptr(id), DueDate: 100})

	err := classes.DeleteWithDisposition(ctx, id, bob, &domain.Disposition{Action: domain.DispositionDelete})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := classes.Get(ctx, id, alice); err != nil {
		t.Fatalf("class should survive non-owner delete: %v", err)
	}
	count, _ := assignments.CountByClass(ctx, id)
	if count != 1 {
		t.Fatalf("assignments should survive non-owner delete, count=%d", count)
	}
}
