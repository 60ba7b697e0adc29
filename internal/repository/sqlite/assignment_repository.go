package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
)

const createAssignmentsTable = `
CREATE TABLE IF NOT EXISTS assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	class_id INTEGER NULL,
	owner_id INTEGER NOT NULL,
	start_date INTEGER NOT NULL,
	due_date INTEGER NOT NULL,
	estimated_completion_minutes INTEGER NOT NULL DEFAULT 0,
	completion_date INTEGER NULL,
	creation_date INTEGER NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_assignments_owner_due ON assignments(owner_id, due_date);
CREATE INDEX IF NOT EXISTS idx_assignments_class_id ON assignments(class_id);
`

const assignmentColumns = `id, title, description, type, class_id, owner_id, start_date, due_date, estimated_completion_minutes, completion_date, creation_date`

type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) repository.AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAssignmentsTable); err != nil {
		return fmt.Errorf("create assignments table: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (int64, error) {
	assignment.CreationDate = time.Now().UnixMilli()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO assignments (title, description, type, class_id, owner_id, start_date, due_date, estimated_completion_minutes, completion_date, creation_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		assignment.Title,
		assignment.Description,
		string(assignment.Type),
		nullInt64(assignment.ClassID),
		assignment.OwnerID,
		assignment.StartDate,
		assignment.DueDate,
		assignment.EstimatedCompletionMinutes,
		nullInt64(assignment.CompletionDate),
		assignment.CreationDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert assignment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("assignment last insert id: %w", err)
	}
	assignment.ID = id
	return id, nil
}

func (r *AssignmentRepository) Get(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE id = ?`,
		id,
	)
	return scanAssignment(row)
}

func (r *AssignmentRepository) ListDueBetween(ctx context.Context, ownerID, after, before int64, completedOnly bool) ([]domain.Assignment, error) {
	query := `
SELECT ` + assignmentColumns + `
FROM assignments
WHERE owner_id = ? AND due_date > ? AND due_date < ?`
	if completedOnly {
		query += ` AND completion_date IS NOT NULL`
	}
	query += ` ORDER BY due_date ASC`

	return r.list(ctx, query, ownerID, after, before)
}

func (r *AssignmentRepository) ListIncompleteDueBetween(ctx context.Context, ownerID, after, before int64) ([]domain.Assignment, error) {
	return r.list(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE owner_id = ? AND due_date > ? AND due_date < ? AND completion_date IS NULL
ORDER BY due_date ASC`,
		ownerID, after, before)
}

func (r *AssignmentRepository) ListCompletedDueBetween(ctx context.Context, ownerID, after, before int64) ([]domain.Assignment, error) {
	return r.list(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE owner_id = ? AND due_date > ? AND due_date < ? AND completion_date IS NOT NULL
ORDER BY completion_date DESC`,
		ownerID, after, before)
}

func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int64, limit, offset int) ([]domain.Assignment, error) {
	return r.list(ctx, `
SELECT `+assignmentColumns+`
FROM assignments
WHERE class_id = ?
ORDER BY due_date DESC
LIMIT ? OFFSET ?`,
		classID, limit, offset)
}

func (r *AssignmentRepository) CountByClass(ctx context.Context, classID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE class_id = ?`, classID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assignments by class: %w", err)
	}
	return count, nil
}

// UpdateFields applies the patch to the row matching both id and owner and
// returns the number of rows affected. Zero rows means the assignment does
// not exist or belongs to someone else; callers decide how to report that.
func (r *AssignmentRepository) UpdateFields(ctx context.Context, id, ownerID int64, patch domain.AssignmentPatch) (int64, error) {
	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *patch.StartDate)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *patch.DueDate)
	}
	if patch.Completion.Set {
		sets = append(sets, "completion_date = ?")
		args = append(args, nullInt64(patch.Completion.Value))
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id, ownerID)
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE assignments
SET %s
WHERE id = ? AND owner_id = ?`, strings.Join(sets, ", ")), args...)
	if err != nil {
		return 0, fmt.Errorf("update assignment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("assignment update rows affected: %w", err)
	}
	return affected, nil
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	assignments := []domain.Assignment{}
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}

	return assignments, rows.Err()
}

func scanAssignment(scanner interface {
	Scan(dest ...any) error
}) (*domain.Assignment, error) {
	var (
		assignment     domain.Assignment
		atype          string
		classID        sql.NullInt64
		completionDate sql.NullInt64
	)

	if err := scanner.Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Description,
		&atype,
		&classID,
		&assignment.OwnerID,
		&assignment.StartDate,
		&assignment.DueDate,
		&assignment.EstimatedCompletionMinutes,
		&completionDate,
		&assignment.CreationDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan assignment: %w", err)
	}

	assignment.Type = domain.AssignmentType(atype)
	if classID.Valid {
		v := classID.Int64
		assignment.ClassID = &v
	}
	if completionDate.Valid {
		v := completionDate.Int64
		assignment.CompletionDate = &v
	}

	return &assignment, nil
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
