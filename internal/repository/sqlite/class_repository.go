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

const createClassesTable = `
CREATE TABLE IF NOT EXISTS classes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	owner_id INTEGER NOT NULL,
	archive_date INTEGER NULL,
	creation_date INTEGER NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_classes_owner_id ON classes(owner_id);
`

type ClassRepository struct {
	db *sql.DB
}

func NewClassRepository(db *sql.DB) repository.ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createClassesTable); err != nil {
		return fmt.Errorf("create classes table: %w", err)
	}
	return nil
}

func (r *ClassRepository) Create(ctx context.Context, class *domain.Class) (int64, error) {
	class.CreationDate = time.Now().UnixMilli()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO classes (name, owner_id, archive_date, creation_date)
VALUES (?, ?, ?, ?)`,
		class.Name,
		class.OwnerID,
		nullInt64(class.ArchiveDate),
		class.CreationDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert class: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("class last insert id: %w", err)
	}
	class.ID = id
	return id, nil
}

func (r *ClassRepository) Get(ctx context.Context, id, ownerID int64) (*domain.Class, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, owner_id, archive_date, creation_date
FROM classes
WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	return scanClass(row)
}

func (r *ClassRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check class exists: %w", err)
	}
	return count > 0, nil
}

func (r *ClassRepository) List(ctx context.Context, ownerID int64, activeOnly bool) ([]domain.ClassWithCount, error) {
	query := `
SELECT c.id, c.name, c.owner_id, c.archive_date, c.creation_date, COUNT(a.id)
FROM classes c
LEFT JOIN assignments a ON a.class_id = c.id
WHERE c.owner_id = ?`
	if activeOnly {
		query += ` AND c.archive_date IS NULL`
	}
	query += `
GROUP BY c.id
ORDER BY c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()

	classes := []domain.ClassWithCount{}
	for rows.Next() {
		var (
			cls         domain.ClassWithCount
			archiveDate sql.NullInt64
		)
		if err := rows.Scan(
			&cls.ID,
			&cls.Name,
			&cls.OwnerID,
			&archiveDate,
			&cls.CreationDate,
			&cls.NumberOfAssignments,
		); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		if archiveDate.Valid {
			v := archiveDate.Int64
			cls.ArchiveDate = &v
		}
		classes = append(classes, cls)
	}

	return classes, rows.Err()
}

func (r *ClassRepository) Update(ctx context.Context, id, ownerID int64, patch domain.ClassPatch) (*domain.Class, error) {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.ArchiveDate.Set {
		sets = append(sets, "archive_date = ?")
		args = append(args, nullInt64(patch.ArchiveDate.Value))
	}
	if len(sets) == 0 {
		return r.Get(ctx, id, ownerID)
	}

	args = append(args, id, ownerID)
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE classes
SET %s
WHERE id = ? AND owner_id = ?`, strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("class update rows affected: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}

	return r.Get(ctx, id, ownerID)
}

// DeleteWithDisposition removes the class and settles its member assignments
// in one all-or-nothing transaction, so a crash mid-operation can never leave
// an assignment pointing at a class that no longer exists.
func (r *ClassRepository) DeleteWithDisposition(ctx context.Context, id, ownerID int64, disposition *domain.Disposition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	var members int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE class_id = ?`, id).Scan(&members); err != nil {
		return fmt.Errorf("count class assignments: %w", err)
	}
	if members > 0 && disposition == nil {
		return repository.ErrDispositionRequired
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("class delete rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	if members > 0 {
		switch disposition.Action {
		case domain.DispositionDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE class_id = ?`, id); err != nil {
				return fmt.Errorf("delete class assignments: %w", err)
			}
		case domain.DispositionReassign:
			if disposition.TargetClassID != nil {
				// the class row is already gone inside this tx, so a
				// self-reassignment fails the existence check too
				var exists int64
				if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes WHERE id = ?`, *disposition.TargetClassID).Scan(&exists); err != nil {
					return fmt.Errorf("check reassignment target: %w", err)
				}
				if exists == 0 {
					return repository.ErrTargetClassMissing
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE assignments SET class_id = ? WHERE class_id = ?`, nullInt64(disposition.TargetClassID), id); err != nil {
				return fmt.Errorf("reassign class assignments: %w", err)
			}
		default:
			return fmt.Errorf("unknown disposition action %q", disposition.Action)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit class delete: %w", err)
	}
	return nil
}

func scanClass(row interface {
	Scan(dest ...any) error
}) (*domain.Class, error) {
	var (
		class       domain.Class
		archiveDate sql.NullInt64
	)
	if err := row.Scan(
		&class.ID,
		&class.Name,
		&class.OwnerID,
		&archiveDate,
		&class.CreationDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan class: %w", err)
	}
	if archiveDate.Valid {
		v := archiveDate.Int64
		class.ArchiveDate = &v
	}
	return &class, nil
}
