package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const attendanceColumns = `id, class_id, student_id, date, status, marked_by, created_at, updated_at`

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func scanAttendance(row pgx.Row) (*model.Attendance, error) {
	a := &model.Attendance{}
	var day time.Time
	err := row.Scan(&a.ID, &a.ClassID, &a.StudentID, &day, &a.Status, &a.MarkedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Date = model.NewDate(day)
	return a, nil
}

// GetByID retrieves an attendance record by its ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*model.Attendance, error) {
	return scanAttendance(r.pool.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id))
}

// List retrieves attendance records matching the filter, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, f model.AttendanceFilter) ([]model.Attendance, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if f.ClassID > 0 {
		args = append(args, f.ClassID)
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, f.Date.Time)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE `+strings.Join(where, " AND ")+
			` ORDER BY date DESC, class_id, student_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// Create inserts a single record. A second record for the same class,
// student and day fails with a unique violation.
func (r *AttendanceRepository) Create(ctx context.Context, a *model.Attendance) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attendance (class_id, student_id, date, status, marked_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		a.ClassID, a.StudentID, a.Date.Time, a.Status, a.MarkedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// CreateMany inserts records in one transaction, skipping any that already exist.
func (r *AttendanceRepository) CreateMany(ctx context.Context, records []model.Attendance) ([]model.Attendance, error) {
	if len(records) == 0 {
		return []model.Attendance{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range records {
		batch.Queue(
			`INSERT INTO attendance (class_id, student_id, date, status, marked_by)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (class_id, student_id, date) DO NOTHING
			 RETURNING id, created_at, updated_at`,
			a.ClassID, a.StudentID, a.Date.Time, a.Status, a.MarkedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	created := make([]model.Attendance, 0, len(records))
	for _, a := range records {
		err := br.QueryRow().Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			br.Close()
			return nil, err
		}
		created = append(created, a)
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// Update changes the status of a record.
func (r *AttendanceRepository) Update(ctx context.Context, a *model.Attendance) error {
	return r.pool.QueryRow(ctx,
		`UPDATE attendance SET status = $1, marked_by = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		a.Status, a.MarkedBy, a.ID,
	).Scan(&a.UpdatedAt)
}

// Delete removes a record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	return requireRow(r.pool.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id))
}

// CountByStatus counts a class-day's records per status.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, classID int64, date model.Date) (map[model.AttendanceStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM attendance
		 WHERE class_id = $1 AND date = $2 GROUP BY status`, classID, date.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.AttendanceStatus]int{}
	for rows.Next() {
		var status model.AttendanceStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
