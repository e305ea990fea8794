package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/handler"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/repository/memstore"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/router"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/validator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type harness struct {
	t      *testing.T
	engine *gin.Engine
	db     *memstore.DB
	bus    *memstore.Bus
	health map[string]handler.Check
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := memstore.New()
	bus := memstore.NewBus()
	log := zerolog.Nop()
	cfg := &config.Config{
		GinMode:            gin.TestMode,
		SupabaseJWTSecret:  testSecret,
		JWTAudience:        "authenticated",
		RateLimitPerMinute: 10000,
	}

	authService := service.NewAuthService(cfg, memstore.NewSessions(), db.Profiles())
	events := service.NewEventService(bus, db.Classes(), db.Enrollments(), log)

	h := &harness{t: t, db: db, bus: bus, health: map[string]handler.Check{
		"database": func(context.Context) error { return nil },
	}}

	handlers := &router.Handlers{
		Health:     handler.NewHealthHandler(h.health),
		Auth:       handler.NewAuthHandler(authService),
		Profile:    handler.NewProfileHandler(service.NewProfileService(db.Profiles())),
		Admin:      handler.NewAdminHandler(service.NewAdminService(db.Profiles(), db.Metrics(), memstore.NewProvisioner(), log)),
		Class:      handler.NewClassHandler(service.NewClassService(db.Classes(), db.Enrollments(), db.Profiles())),
		Assignment: handler.NewAssignmentHandler(service.NewAssignmentService(db.Classes(), db.Enrollments(), db.Assignments(), events)),
		Submission: handler.NewSubmissionHandler(service.NewSubmissionService(db.Classes(), db.Enrollments(), db.Assignments(), db.Submissions(), events)),
		Grade:      handler.NewGradeHandler(service.NewGradeService(db.Classes(), db.Enrollments(), db.Assignments(), db.Submissions(), db.Grades(), events)),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(db.Classes(), db.Enrollments(), db.Attendance(), events)),
		WS:         handler.NewWSHandler(events, log, nil),
		System:     handler.NewSystemHandler(nil, nil, log),
	}
	h.engine = router.SetupRouter(ctx, authService, handlers, cfg, log)
	return h
}

func token(t *testing.T, sub uuid.UUID) string {
	t.Helper()
	claims := service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:     sub.String()[:8] + "@example.com",
		Role:      "authenticated",
		SessionID: uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// user stores a profile and returns its id and a bearer token for it.
func (h *harness) user(role model.Role, name string) (uuid.UUID, string) {
	h.t.Helper()
	id := uuid.New()
	require.NoError(h.t, h.db.Profiles().Create(context.Background(), &model.Profile{
		ID: id, Email: name + "@example.com", FirstName: name, LastName: "Test", Role: role,
	}))
	return id, token(h.t, id)
}

func (h *harness) do(method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
	Metadata   response.Metadata    `json:"metadata"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// field unmarshals data[key] into dst.
func field(t *testing.T, w *httptest.ResponseRecorder, key string, dst interface{}) {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Contains(t, data, key)
	require.NoError(t, json.Unmarshal(data[key], dst))
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code response.ErrCode) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Metadata.RequestID)
}

func TestEveryRouteButHealthRequiresCredential(t *testing.T) {
	h := newHarness(t)

	for _, route := range h.engine.Routes() {
		if route.Path == "/" || route.Path == "/health" {
			continue
		}
		path := strings.NewReplacer(":student_id", uuid.NewString(), ":id", "1").Replace(route.Path)

		t.Run(route.Method+" "+route.Path, func(t *testing.T) {
			w := h.do(route.Method, path, "", nil)
			assertError(t, w, http.StatusUnauthorized, response.ErrTokenRequired)

			w = h.do(route.Method, path, "not-a-token", nil)
			assertError(t, w, http.StatusUnauthorized, response.ErrTokenInvalid)
		})
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/", "/health"} {
		w := h.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	}

	h.health["redis"] = func(context.Context) error { return errors.New("connection refused") }
	w := h.do(http.MethodGet, "/health", "", nil)
	assertError(t, w, http.StatusServiceUnavailable, response.ErrServiceUnavailable)
	assert.Equal(t, "unavailable", decode(t, w).Error.Fields["redis"])
}

func TestProfileBootstrap(t *testing.T) {
	h := newHarness(t)
	tok := token(t, uuid.New())

	w := h.do(http.MethodGet, "/api/v1/auth/me", tok, nil)
	assertError(t, w, http.StatusNotFound, response.ErrProfileNotFound)

	w = h.do(http.MethodPost, "/api/v1/profiles", tok, gin.H{"first_name": "Nia", "last_name": "Bello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/v1/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ident model.Identity
	field(t, w, "user", &ident)
	assert.Equal(t, model.RoleStudent, ident.Role)

	w = h.do(http.MethodPost, "/api/v1/profiles", tok, gin.H{"first_name": "Nia", "last_name": "Bello"})
	assertError(t, w, http.StatusConflict, response.ErrProfileExists)

	w = h.do(http.MethodPut, "/api/v1/profiles/me", tok, gin.H{"first_name": "  "})
	assertError(t, w, http.StatusBadRequest, response.ErrValidation)
	assert.Contains(t, decode(t, w).Error.Fields, "first_name")
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	_, tok := h.user(model.RoleTeacher, "tess")

	w := h.do(http.MethodPost, "/api/v1/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/v1/auth/me", tok, nil)
	assertError(t, w, http.StatusUnauthorized, response.ErrSessionRevoked)
}

func TestClassroomFlow(t *testing.T) {
	h := newHarness(t)

	_, adminTok := h.user(model.RoleAdmin, "ada")
	teacherID, teacherTok := h.user(model.RoleTeacher, "tess")
	_, otherTeacherTok := h.user(model.RoleTeacher, "theo")
	studentID, studentTok := h.user(model.RoleStudent, "sam")
	_, outsiderTok := h.user(model.RoleStudent, "sol")

	w := h.do(http.MethodPost, "/api/v1/classes", teacherTok, gin.H{"name": "Biology", "teacher_id": teacherID})
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)

	w = h.do(http.MethodPost, "/api/v1/classes", adminTok, gin.H{"name": "Biology", "teacher_id": teacherID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var class model.Class
	field(t, w, "class", &class)
	classPath := fmt.Sprintf("/api/v1/classes/%d", class.ID)

	w = h.do(http.MethodPost, classPath+"/students", teacherTok, gin.H{"student_id": studentID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = h.do(http.MethodPost, classPath+"/students", teacherTok, gin.H{"student_id": studentID})
	assertError(t, w, http.StatusConflict, response.ErrConflict)

	w = h.do(http.MethodPost, "/api/v1/assignments", teacherTok, gin.H{
		"class_id": class.ID, "title": "Cell essay", "due_date": "2026-11-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var asg model.Assignment
	field(t, w, "assignment", &asg)

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d", asg.ID), studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var gotAsg model.Assignment
	field(t, w, "assignment", &gotAsg)
	assert.Equal(t, "Cell essay", gotAsg.Title)
	assert.Equal(t, "2026-11-02", gotAsg.DueDate.String())

	// An unenrolled student is refused with a conflict, never a 201.
	w = h.do(http.MethodPost, "/api/v1/submissions", outsiderTok, gin.H{"assignment_id": asg.ID, "notes": "me too"})
	assertError(t, w, http.StatusConflict, response.ErrNotEnrolled)

	w = h.do(http.MethodPost, "/api/v1/submissions", studentTok, gin.H{"assignment_id": asg.ID})
	assertError(t, w, http.StatusBadRequest, response.ErrValidation)

	w = h.do(http.MethodPost, "/api/v1/submissions", studentTok, gin.H{
		"assignment_id": asg.ID, "file_url": "https://files.example.com/essay.pdf",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub model.Submission
	field(t, w, "submission", &sub)
	assert.Equal(t, studentID, sub.StudentID)

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/submissions/%d", sub.ID), outsiderTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)

	w = h.do(http.MethodPost, "/api/v1/grades", otherTeacherTok, gin.H{"submission_id": sub.ID, "score": 40})
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)

	w = h.do(http.MethodPost, "/api/v1/grades", teacherTok, gin.H{"submission_id": sub.ID, "score": 140})
	assertError(t, w, http.StatusBadRequest, response.ErrValidation)
	assert.Contains(t, decode(t, w).Error.Fields, "score")

	w = h.do(http.MethodPost, "/api/v1/grades", teacherTok, gin.H{"submission_id": sub.ID, "score": 92, "feedback": "Clear"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/submissions/%d/grade", sub.ID), studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grade model.Grade
	field(t, w, "grade", &grade)
	assert.Equal(t, 92.0, grade.Score)

	w = h.do(http.MethodGet, "/api/v1/grades/me", studentTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodGet, "/api/v1/grades/me", teacherTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrRoleRequired)
	w = h.do(http.MethodGet, "/api/v1/submissions/me", teacherTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrRoleRequired)

	w = h.do(http.MethodGet, classPath, otherTeacherTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)
	w = h.do(http.MethodGet, classPath+"/students", studentTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)

	w = h.do(http.MethodDelete, classPath, teacherTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)
	w = h.do(http.MethodDelete, classPath, adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/submissions/%d", sub.ID), adminTok, nil)
	assertError(t, w, http.StatusNotFound, response.ErrNotFound)
}

func TestAttendanceEndpoints(t *testing.T) {
	h := newHarness(t)

	_, adminTok := h.user(model.RoleAdmin, "ada")
	teacherID, teacherTok := h.user(model.RoleTeacher, "tess")
	s1, s1Tok := h.user(model.RoleStudent, "sam")
	s2, _ := h.user(model.RoleStudent, "sara")

	w := h.do(http.MethodPost, "/api/v1/classes", adminTok, gin.H{"name": "Chemistry", "teacher_id": teacherID})
	require.Equal(t, http.StatusCreated, w.Code)
	var class model.Class
	field(t, w, "class", &class)
	classPath := fmt.Sprintf("/api/v1/classes/%d", class.ID)
	for _, id := range []uuid.UUID{s1, s2} {
		w = h.do(http.MethodPost, classPath+"/students", teacherTok, gin.H{"student_id": id})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = h.do(http.MethodPost, "/api/v1/attendance/bulk", teacherTok, gin.H{
		"class_id": class.ID,
		"date":     "2026-10-12",
		"records": []gin.H{
			{"student_id": s1, "status": "present"},
			{"student_id": s2, "status": "snoozing"},
		},
	})
	assertError(t, w, http.StatusBadRequest, response.ErrValidation)
	assert.Contains(t, decode(t, w).Error.Fields, "records[1].status")

	w = h.do(http.MethodPost, "/api/v1/attendance", teacherTok, gin.H{
		"class_id": class.ID, "student_id": s1, "date": "2026-10-12", "status": "late",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec model.Attendance
	field(t, w, "attendance", &rec)

	w = h.do(http.MethodPost, "/api/v1/attendance", teacherTok, gin.H{
		"class_id": class.ID, "student_id": s1, "date": "2026-10-12", "status": "present",
	})
	assertError(t, w, http.StatusConflict, response.ErrConflict)

	w = h.do(http.MethodPost, "/api/v1/attendance/bulk", teacherTok, gin.H{
		"class_id": class.ID,
		"date":     "2026-10-12",
		"records": []gin.H{
			{"student_id": s1, "status": "present"},
			{"student_id": s2, "status": "absent"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bulk model.BulkAttendanceResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &bulk))
	assert.Len(t, bulk.Created, 1)
	assert.Equal(t, []uuid.UUID{s1}, bulk.Skipped)

	w = h.do(http.MethodGet, classPath+"/attendance/summary?date=2026-10-12", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary model.AttendanceSummary
	field(t, w, "summary", &summary)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 1, summary.Counts[model.AttendanceLate])
	assert.Equal(t, 1, summary.Counts[model.AttendanceAbsent])
	assert.Equal(t, 50.0, summary.Percentage)

	w = h.do(http.MethodGet, classPath+"/attendance?date=12-10-2026", teacherTok, nil)
	assertError(t, w, http.StatusBadRequest, response.ErrInvalidQuery)

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/students/%s/attendance", s1), s1Tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own []model.Attendance
	field(t, w, "attendance", &own)
	assert.Len(t, own, 1)

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/students/%s/attendance", s2), s1Tok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)

	w = h.do(http.MethodPut, fmt.Sprintf("/api/v1/attendance/%d", rec.ID), teacherTok, gin.H{"status": "excused"})
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPut, fmt.Sprintf("/api/v1/attendance/%d", rec.ID), s1Tok, gin.H{"status": "present"})
	assertError(t, w, http.StatusForbidden, response.ErrForbidden)
}

func TestAdminEndpoints(t *testing.T) {
	h := newHarness(t)

	_, adminTok := h.user(model.RoleAdmin, "ada")
	_, teacherTok := h.user(model.RoleTeacher, "tess")
	h.user(model.RoleStudent, "sam")

	w := h.do(http.MethodGet, "/api/v1/admin/users", teacherTok, nil)
	assertError(t, w, http.StatusForbidden, response.ErrAdminAccessOnly)

	w = h.do(http.MethodGet, "/api/v1/admin/users?per_page=2", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalItems)
	assert.Equal(t, 2, env.Pagination.TotalPages)

	w = h.do(http.MethodGet, "/api/v1/admin/users?role=janitor", adminTok, nil)
	assertError(t, w, http.StatusBadRequest, response.ErrInvalidQuery)

	w = h.do(http.MethodPost, "/api/v1/admin/users", adminTok, gin.H{
		"email": "new.teacher@example.com", "first_name": "New", "last_name": "Teacher", "role": "teacher",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.CreatedUser
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.NotEmpty(t, created.GeneratedPassword)
	assert.Equal(t, model.RoleTeacher, created.Profile.Role)

	w = h.do(http.MethodPost, "/api/v1/admin/users", adminTok, gin.H{
		"email": "not-an-email", "first_name": "X", "last_name": "Y", "role": "wizard",
	})
	assertError(t, w, http.StatusBadRequest, response.ErrValidation)
	fields := decode(t, w).Error.Fields
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "role")

	w = h.do(http.MethodPut, "/api/v1/admin/users/"+created.Profile.ID.String()+"/role", adminTok, gin.H{"role": "student"})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/v1/admin/users/not-a-uuid", adminTok, nil)
	assertError(t, w, http.StatusBadRequest, response.ErrInvalidID)

	w = h.do(http.MethodGet, "/api/v1/admin/metrics", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics model.Metrics
	field(t, w, "metrics", &metrics)
	assert.Equal(t, 4, metrics.TotalUsers)

	w = h.do(http.MethodGet, "/api/v1/admin/system/metrics/snapshot", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines")
}

func TestInvalidPathID(t *testing.T) {
	h := newHarness(t)
	_, adminTok := h.user(model.RoleAdmin, "ada")

	w := h.do(http.MethodGet, "/api/v1/classes/abc", adminTok, nil)
	assertError(t, w, http.StatusBadRequest, response.ErrInvalidID)

	w = h.do(http.MethodGet, "/api/v1/classes/999", adminTok, nil)
	assertError(t, w, http.StatusNotFound, response.ErrNotFound)
}
