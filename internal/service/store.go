package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// Store interfaces are satisfied by the pgx repositories in production and by
// the in-memory store in tests. Missing rows are reported as pgx.ErrNoRows and
// constraint violations as *pgconn.PgError, exactly as Postgres reports them.

type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	List(ctx context.Context, f model.ProfileFilter) ([]model.Profile, int, error)
	Create(ctx context.Context, p *model.Profile) error
	Update(ctx context.Context, p *model.Profile) error
}

type ClassStore interface {
	GetByID(ctx context.Context, id int64) (*model.Class, error)
	List(ctx context.Context, f model.ClassFilter) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id int64) error
}

type EnrollmentStore interface {
	IsEnrolled(ctx context.Context, classID int64, studentID uuid.UUID) (bool, error)
	ListByClass(ctx context.Context, classID int64) ([]model.Enrollment, error)
	CountByClass(ctx context.Context, classID int64) (int, error)
	Create(ctx context.Context, e *model.Enrollment) error
	Delete(ctx context.Context, classID int64, studentID uuid.UUID) error
}

type AssignmentStore interface {
	GetByID(ctx context.Context, id int64) (*model.Assignment, error)
	ListByClass(ctx context.Context, classID int64) ([]model.Assignment, error)
	Create(ctx context.Context, a *model.Assignment) error
	Update(ctx context.Context, a *model.Assignment) error
	Delete(ctx context.Context, id int64) error
}

type SubmissionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]model.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Submission, error)
	Create(ctx context.Context, s *model.Submission) error
	Update(ctx context.Context, s *model.Submission) error
	Delete(ctx context.Context, id int64) error
}

type GradeStore interface {
	GetByID(ctx context.Context, id int64) (*model.Grade, error)
	GetBySubmission(ctx context.Context, submissionID int64) (*model.Grade, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]model.Grade, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Grade, error)
	Create(ctx context.Context, g *model.Grade) error
	Update(ctx context.Context, g *model.Grade) error
	Delete(ctx context.Context, id int64) error
}

type AttendanceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Attendance, error)
	List(ctx context.Context, f model.AttendanceFilter) ([]model.Attendance, error)
	Create(ctx context.Context, a *model.Attendance) error
	// CreateMany inserts the records, silently skipping any that already
	// exist for the same class, student and date. It returns the inserted rows.
	CreateMany(ctx context.Context, records []model.Attendance) ([]model.Attendance, error)
	Update(ctx context.Context, a *model.Attendance) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, classID int64, date model.Date) (map[model.AttendanceStatus]int, error)
}

type MetricsStore interface {
	Counts(ctx context.Context) (*model.Metrics, error)
}

// SessionStore remembers signed-out sessions until their tokens expire.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Subscription is a live feed of raw event payloads.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// EventBus fans class events out to live subscribers.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// UserProvisioner creates accounts in the external auth service.
type UserProvisioner interface {
	CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
