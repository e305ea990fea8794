package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const gradeColumns = `g.id, g.submission_id, g.score, g.feedback, g.graded_by, g.graded_at, g.updated_at`

// GradeRepository handles grade data access.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

func scanGrade(row pgx.Row) (*model.Grade, error) {
	g := &model.Grade{}
	err := row.Scan(&g.ID, &g.SubmissionID, &g.Score, &g.Feedback, &g.GradedBy, &g.GradedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GradeRepository) list(ctx context.Context, query string, arg interface{}) ([]model.Grade, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Grade{}
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// GetByID retrieves a grade by its ID.
func (r *GradeRepository) GetByID(ctx context.Context, id int64) (*model.Grade, error) {
	return scanGrade(r.pool.QueryRow(ctx, `SELECT `+gradeColumns+` FROM grades g WHERE g.id = $1`, id))
}

// GetBySubmission retrieves the grade of a submission.
func (r *GradeRepository) GetBySubmission(ctx context.Context, submissionID int64) (*model.Grade, error) {
	return scanGrade(r.pool.QueryRow(ctx,
		`SELECT `+gradeColumns+` FROM grades g WHERE g.submission_id = $1`, submissionID))
}

// ListByAssignment retrieves the grades given for an assignment.
func (r *GradeRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]model.Grade, error) {
	return r.list(ctx,
		`SELECT `+gradeColumns+` FROM grades g
		 JOIN submissions s ON s.id = g.submission_id
		 WHERE s.assignment_id = $1 ORDER BY g.graded_at, g.id`, assignmentID)
}

// ListByStudent retrieves the grades of a student's submissions.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Grade, error) {
	return r.list(ctx,
		`SELECT `+gradeColumns+` FROM grades g
		 JOIN submissions s ON s.id = g.submission_id
		 WHERE s.student_id = $1 ORDER BY g.graded_at DESC, g.id`, studentID)
}

// Create inserts a new grade.
func (r *GradeRepository) Create(ctx context.Context, g *model.Grade) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO grades (submission_id, score, feedback, graded_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, graded_at, updated_at`,
		g.SubmissionID, g.Score, g.Feedback, g.GradedBy,
	).Scan(&g.ID, &g.GradedAt, &g.UpdatedAt)
}

// Update modifies the score and feedback of a grade.
func (r *GradeRepository) Update(ctx context.Context, g *model.Grade) error {
	return r.pool.QueryRow(ctx,
		`UPDATE grades SET score = $1, feedback = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		g.Score, g.Feedback, g.ID,
	).Scan(&g.UpdatedAt)
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	return requireRow(r.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id))
}
