package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const assignmentColumns = `id, class_id, title, description, due_date, file_url, created_by, created_at, updated_at`

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

func scanAssignment(row pgx.Row) (*model.Assignment, error) {
	a := &model.Assignment{}
	var due *time.Time
	err := row.Scan(&a.ID, &a.ClassID, &a.Title, &a.Description, &due, &a.FileURL, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.DueDate = datePtr(due)
	return a, nil
}

// GetByID retrieves an assignment by its ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*model.Assignment, error) {
	return scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
}

// ListByClass retrieves the assignments of a class, soonest due first.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int64) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE class_id = $1 ORDER BY due_date NULLS LAST, id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignments (class_id, title, description, due_date, file_url, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.ClassID, a.Title, a.Description, dateArg(a.DueDate), a.FileURL, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update modifies an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	return r.pool.QueryRow(ctx,
		`UPDATE assignments SET title = $1, description = $2, due_date = $3, file_url = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		a.Title, a.Description, dateArg(a.DueDate), a.FileURL, a.ID,
	).Scan(&a.UpdatedAt)
}

// Delete removes an assignment and, by cascade, its submissions and grades.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	return requireRow(r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id))
}
