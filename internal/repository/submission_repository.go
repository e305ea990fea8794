package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const submissionColumns = `id, assignment_id, student_id, file_url, notes, submitted_at, updated_at`

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileURL, &s.Notes, &s.SubmittedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubmissionRepository) list(ctx context.Context, query string, arg interface{}) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

// ListByAssignment retrieves every submission for an assignment.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]model.Submission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at, id`,
		assignmentID)
}

// ListByStudent retrieves a student's submissions, newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Submission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC, id`,
		studentID)
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, file_url, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, submitted_at, updated_at`,
		s.AssignmentID, s.StudentID, s.FileURL, s.Notes,
	).Scan(&s.ID, &s.SubmittedAt, &s.UpdatedAt)
}

// Update modifies the content of a submission.
func (r *SubmissionRepository) Update(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`UPDATE submissions SET file_url = $1, notes = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		s.FileURL, s.Notes, s.ID,
	).Scan(&s.UpdatedAt)
}

// Delete removes a submission and its grade.
func (r *SubmissionRepository) Delete(ctx context.Context, id int64) error {
	return requireRow(r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id))
}
