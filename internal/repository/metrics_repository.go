package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// MetricsRepository computes platform-wide counters.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

// Counts returns every dashboard counter in two round trips.
func (r *MetricsRepository) Counts(ctx context.Context) (*model.Metrics, error) {
	m := &model.Metrics{UsersByRole: map[model.Role]int{}}
	for _, role := range model.AllRoles {
		m.UsersByRole[role] = 0
	}

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM classes),
			(SELECT COUNT(DISTINCT student_id) FROM class_students),
			(SELECT COUNT(*) FROM assignments),
			(SELECT COUNT(*) FROM submissions),
			(SELECT COUNT(*) FROM grades),
			(SELECT COUNT(*) FROM attendance)`,
	).Scan(&m.TotalClasses, &m.StudentsEnrolled, &m.AssignmentsCreated,
		&m.SubmissionsReceived, &m.GradesEntered, &m.AttendanceRecords)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role model.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		m.UsersByRole[role] = n
		m.TotalUsers += n
	}
	return m, rows.Err()
}
