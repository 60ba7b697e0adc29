package sqlite

import (
	"context"
	"testing"

	"homework-calendar/internal/domain"
)

func TestListIncompleteDueBetween_StrictBounds(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")

	seedAssignment(t, assignments, domain.Assignment{Title: "on lower bound", OwnerID: owner, DueDate: 1000})
	seedAssignment(t, assignments, domain.Assignment{Title: "inside", OwnerID: owner, DueDate: 1500})
	seedAssignment(t, assignments, domain.Assignment{Title: "on upper bound", OwnerID: owner, DueDate: 2000})
	seedAssignment(t, assignments, domain.Assignment{Title: "completed inside", OwnerID: owner, DueDate: 1600, CompletionDate: ptr(1700)})

	got, err := assignments.ListIncompleteDueBetween(ctx, owner, 1000, 2000)
	if err != nil {
		t.Fatalf("list incomplete: %v", err)
	}
	if len(got) != 1 || got[0].Title != "inside" {
		t.Fatalf("expected only the strictly-inside incomplete assignment, got %+v", got)
	}
}

func TestListIncompleteDueBetween_OwnerScoped(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	seedAssignment(t, assignments, domain.Assignment{Title: "alice's", OwnerID: alice, DueDate: 1500})
	seedAssignment(t, assignments, domain.Assignment{Title: "bob's", OwnerID: bob, DueDate: 1500})

	got, err := assignments.ListIncompleteDueBetween(ctx, alice, 0, 2000)
	if err != nil {
		t.Fatalf("list incomplete: %v", err)
	}
	if len(got) != 1 || got[0].Title != "alice's" {
		t.Fatalf("expected only alice's assignment, got %+v", got)
	}
}

func TestListCompletedDueBetween_OrderedByCompletionDesc(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")

	seedAssignment(t, assignments, domain.Assignment{Title: "first done", OwnerID: owner, DueDate: 1100, CompletionDate: ptr(100)})
	seedAssignment(t, assignments, domain.Assignment{Title: "last done", OwnerID: owner, DueDate: 1200, CompletionDate: ptr(300)})
	seedAssignment(t, assignments, domain.Assignment{Title: "middle done", OwnerID: owner, DueDate: 1300, CompletionDate: ptr(200)})
	seedAssignment(t, assignments, domain.Assignment{Title: "not done", OwnerID: owner, DueDate: 1400})

	got, err := assignments.ListCompletedDueBetween(ctx, owner, 1000, 2000)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 completed assignments, got %d", len(got))
	}
	want := []string{"last done", "middle done", "first done"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, got[i].Title)
		}
	}
}

func TestListDueBetween_CompletedOnly(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")

	seedAssignment(t, assignments, domain.Assignment{Title: "open", OwnerID: owner, DueDate: 1500})
	seedAssignment(t, assignments, domain.Assignment{Title: "done", OwnerID: owner, DueDate: 1600, CompletionDate: ptr(1700)})

	all, err := assignments.ListDueBetween(ctx, owner, 1000, 2000, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(all))
	}

	done, err := assignments.ListDueBetween(ctx, owner, 1000, 2000, true)
	if err != nil {
		t.Fatalf("list completed only: %v", err)
	}
	if len(done) != 1 || done[0].Title != "done" {
		t.Fatalf("expected only the completed assignment, got %+v", done)
	}
}

func TestListDueBetween_EmptyIsNotError(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	owner := seedUser(t, users, "alice")

	got, err := assignments.ListDueBetween(context.Background(), owner, 0, 10, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListByClass_PaginatesByDueDateDesc(t *testing.T) {
	_, users, classes, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	classID := seedClass(t, classes, owner, "Math")

	for i := int64(1); i <= 12; i++ {
		seedAssignment(t, assignments, domain.Assignment{
			Title:   "hw",
			OwnerID: owner,
			ClassID: ptr(classID),
			DueDate: i * 100,
		})
	}

	page1, err := assignments.ListByClass(ctx, classID, 10, 0)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != 10 {
		t.Fatalf("expected 10 rows on page 1, got %d", len(page1))
	}
	if page1[0].DueDate != 1200 || page1[9].DueDate != 300 {
		t.Fatalf("unexpected page 1 ordering: first=%d last=%d", page1[0].DueDate, page1[9].DueDate)
	}

	page2, err := assignments.ListByClass(ctx, classID, 10, 10)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(page2))
	}

	count, err := assignments.CountByClass(ctx, classID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected count 12, got %d", count)
	}
}

func TestUpdateFields_PartialAndTriState(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedAssignment(t, assignments, domain.Assignment{
		Title:       "essay",
		Description: "rough draft",
		OwnerID:     owner,
		StartDate:   100,
		DueDate:     200,
	})

	title := "final essay"
	affected, err := assignments.UpdateFields(ctx, id, owner, domain.AssignmentPatch{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := assignments.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "final essay" || got.Description != "rough draft" || got.DueDate != 200 {
		t.Fatalf("unexpected row after partial update: %+v", got)
	}

	// set completion, then clear it with an explicit null
	affected, err = assignments.UpdateFields(ctx, id, owner, domain.AssignmentPatch{
		Completion: domain.OptMillis{Set: true, Value: ptr(500)},
	})
	if err != nil || affected != 1 {
		t.Fatalf("set completion: affected=%d err=%v", affected, err)
	}
	got, _ = assignments.Get(ctx, id)
	if got.CompletionDate == nil || *got.CompletionDate != 500 {
		t.Fatalf("expected completion date 500, got %+v", got.CompletionDate)
	}

	affected, err = assignments.UpdateFields(ctx, id, owner, domain.AssignmentPatch{
		Completion: domain.OptMillis{Set: true, Value: nil},
	})
	if err != nil || affected != 1 {
		t.Fatalf("clear completion: affected=%d err=%v", affected, err)
	}
	got, _ = assignments.Get(ctx, id)
	if got.CompletionDate != nil {
		t.Fatalf("expected completion cleared, got %v", *got.CompletionDate)
	}
}

func TestUpdateFields_EmptyStringTitleIsApplied(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedAssignment(t, assignments, domain.Assignment{Title: "essay", OwnerID: owner, DueDate: 200})

	empty := ""
	affected, err := assignments.UpdateFields(ctx, id, owner, domain.AssignmentPatch{Title: &empty})
	if err != nil || affected != 1 {
		t.Fatalf("update: affected=%d err=%v", affected, err)
	}

	got, _ := assignments.Get(ctx, id)
	if got.Title != "" {
		t.Fatalf("expected empty title, got %q", got.Title)
	}
}

func TestUpdateFields_OwnershipMismatchAffectsZeroRows(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	id := seedAssignment(t, assignments, domain.Assignment{Title: "essay", OwnerID: alice, DueDate: 200})

	title := "hijacked"
	affected, err := assignments.UpdateFields(ctx, id, bob, domain.AssignmentPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected for non-owner, got %d", affected)
	}

	got, _ := assignments.Get(ctx, id)
	if got.Title != "essay" {
		t.Fatalf("row mutated by non-owner: %+v", got)
	}
}

func TestUpdateFields_EmptyPatchAffectsNothing(t *testing.T) {
	_, users, _, assignments := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, users, "alice")
	id := seedAssignment(t, assignments, domain.Assignment{Title: "essay", OwnerID: owner, DueDate: 200})

	affected, err := assignments.UpdateFields(ctx, id, owner, domain.AssignmentPatch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected no-op, got %d rows affected", affected)
	}
}
