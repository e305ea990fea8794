package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/repository/memstore"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "service-test-secret"

type fixture struct {
	db       *memstore.DB
	bus      *memstore.Bus
	sessions *memstore.Sessions
	prov     *memstore.Provisioner

	auth        *service.AuthService
	events      *service.EventService
	profiles    *service.ProfileService
	admin       *service.AdminService
	classes     *service.ClassService
	assignments *service.AssignmentService
	submissions *service.SubmissionService
	grades      *service.GradeService
	attendance  *service.AttendanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memstore.New()
	f := &fixture{
		db:       db,
		bus:      memstore.NewBus(),
		sessions: memstore.NewSessions(),
		prov:     memstore.NewProvisioner(),
	}
	log := zerolog.Nop()
	cfg := &config.Config{SupabaseJWTSecret: testSecret, JWTAudience: "authenticated"}

	f.auth = service.NewAuthService(cfg, f.sessions, db.Profiles())
	f.events = service.NewEventService(f.bus, db.Classes(), db.Enrollments(), log)
	f.profiles = service.NewProfileService(db.Profiles())
	f.admin = service.NewAdminService(db.Profiles(), db.Metrics(), f.prov, log)
	f.classes = service.NewClassService(db.Classes(), db.Enrollments(), db.Profiles())
	f.assignments = service.NewAssignmentService(db.Classes(), db.Enrollments(), db.Assignments(), f.events)
	f.submissions = service.NewSubmissionService(db.Classes(), db.Enrollments(), db.Assignments(), db.Submissions(), f.events)
	f.grades = service.NewGradeService(db.Classes(), db.Enrollments(), db.Assignments(), db.Submissions(), db.Grades(), f.events)
	f.attendance = service.NewAttendanceService(db.Classes(), db.Enrollments(), db.Attendance(), f.events)
	return f
}

// user stores a profile and returns the identity the auth middleware would resolve.
func (f *fixture) user(t *testing.T, role model.Role, name string) *model.Identity {
	t.Helper()
	p := &model.Profile{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		FirstName: name,
		LastName:  "Test",
		Role:      role,
	}
	require.NoError(t, f.db.Profiles().Create(context.Background(), p))
	return &model.Identity{UserID: p.ID, Email: p.Email, Role: role, Profile: p}
}

// class creates a class taught by teacher and enrolls students.
func (f *fixture) class(t *testing.T, admin, teacher *model.Identity, students ...*model.Identity) *model.Class {
	t.Helper()
	ctx := context.Background()

	class, err := f.classes.Create(ctx, admin, model.CreateClassRequest{
		Name:      "Biology",
		TeacherID: teacher.UserID.String(),
	})
	require.NoError(t, err)

	for _, s := range students {
		_, err := f.classes.Enroll(ctx, teacher, class.ID, model.EnrollStudentRequest{StudentID: s.UserID.String()})
		require.NoError(t, err)
	}
	return class
}

func (f *fixture) assignment(t *testing.T, teacher *model.Identity, classID int64) *model.Assignment {
	t.Helper()
	a, err := f.assignments.Create(context.Background(), teacher, model.CreateAssignmentRequest{
		ClassID: classID,
		Title:   "Cell structure essay",
	})
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func signToken(t *testing.T, secret string, claims service.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(sub string, exp time.Time) service.Claims {
	return service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
		Email:     "user@example.com",
		Role:      "authenticated",
		SessionID: uuid.NewString(),
	}
}
