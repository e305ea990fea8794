package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// ClassRepository handles class and roster data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, teacher_id, created_at, updated_at
		 FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves classes, optionally restricted to a teacher or a student's roster.
func (r *ClassRepository) List(ctx context.Context, f model.ClassFilter) ([]model.Class, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if f.TeacherID != nil {
		args = append(args, *f.TeacherID)
		where = append(where, fmt.Sprintf("c.teacher_id = $%d", len(args)))
	}
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM class_students cs WHERE cs.class_id = c.id AND cs.student_id = $%d)", len(args)))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.description, c.teacher_id, c.created_at, c.updated_at
		 FROM classes c WHERE `+strings.Join(where, " AND ")+` ORDER BY c.name, c.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, description, teacher_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.TeacherID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing class.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`UPDATE classes SET name = $1, description = $2, teacher_id = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		c.Name, c.Description, c.TeacherID, c.ID,
	).Scan(&c.UpdatedAt)
}

// Delete removes a class by its ID. Roster, assignments and attendance go with it.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	return requireRow(r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id))
}

// EnrollmentRepository handles the class_students roster table.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// IsEnrolled reports whether a student is on a class roster.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, classID int64, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM class_students WHERE class_id = $1 AND student_id = $2)`,
		classID, studentID,
	).Scan(&exists)
	return exists, err
}

// ListByClass retrieves a class roster.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT class_id, student_id, enrolled_at FROM class_students
		 WHERE class_id = $1 ORDER BY enrolled_at, student_id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := []model.Enrollment{}
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ClassID, &e.StudentID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}

// CountByClass returns the roster size.
func (r *EnrollmentRepository) CountByClass(ctx context.Context, classID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM class_students WHERE class_id = $1`, classID).Scan(&n)
	return n, err
}

// Create adds a student to a roster.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO class_students (class_id, student_id) VALUES ($1, $2) RETURNING enrolled_at`,
		e.ClassID, e.StudentID,
	).Scan(&e.EnrolledAt)
}

// Delete removes a student from a roster.
func (r *EnrollmentRepository) Delete(ctx context.Context, classID int64, studentID uuid.UUID) error {
	return requireRow(r.pool.Exec(ctx,
		`DELETE FROM class_students WHERE class_id = $1 AND student_id = $2`, classID, studentID))
}
