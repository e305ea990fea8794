// Package memstore is an in-memory implementation of the service stores.
// It mirrors the Postgres schema closely enough for service and handler
// tests: missing rows yield pgx.ErrNoRows, unique and foreign-key
// violations yield *pgconn.PgError with the same SQLSTATE codes, and
// deletes cascade the way the migrations declare.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnmate/learnmate-backend/internal/model"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}

type enrollKey struct {
	classID   int64
	studentID uuid.UUID
}

type attendanceKey struct {
	classID   int64
	studentID uuid.UUID
	date      string
}

// DB holds every table. Use the accessor methods to get typed stores.
type DB struct {
	mu sync.Mutex

	profiles    map[uuid.UUID]model.Profile
	classes     map[int64]model.Class
	enrollments map[enrollKey]model.Enrollment
	assignments map[int64]model.Assignment
	submissions map[int64]model.Submission
	grades      map[int64]model.Grade
	attendance  map[int64]model.Attendance

	seq int64
	now func() time.Time
}

// New creates an empty database.
func New() *DB {
	return &DB{
		profiles:    map[uuid.UUID]model.Profile{},
		classes:     map[int64]model.Class{},
		enrollments: map[enrollKey]model.Enrollment{},
		assignments: map[int64]model.Assignment{},
		submissions: map[int64]model.Submission{},
		grades:      map[int64]model.Grade{},
		attendance:  map[int64]model.Attendance{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *DB) Profiles() *Profiles       { return &Profiles{db} }
func (db *DB) Classes() *Classes         { return &Classes{db} }
func (db *DB) Enrollments() *Enrollments { return &Enrollments{db} }
func (db *DB) Assignments() *Assignments { return &Assignments{db} }
func (db *DB) Submissions() *Submissions { return &Submissions{db} }
func (db *DB) Grades() *Grades           { return &Grades{db} }
func (db *DB) Attendance() *Attendance   { return &Attendance{db} }
func (db *DB) Metrics() *Metrics         { return &Metrics{db} }

// cascade helpers; callers hold db.mu.

func (db *DB) deleteSubmission(id int64) {
	delete(db.submissions, id)
	for gid, g := range db.grades {
		if g.SubmissionID == id {
			delete(db.grades, gid)
		}
	}
}

func (db *DB) deleteAssignment(id int64) {
	delete(db.assignments, id)
	for sid, s := range db.submissions {
		if s.AssignmentID == id {
			db.deleteSubmission(sid)
		}
	}
}

func (db *DB) deleteClass(id int64) {
	delete(db.classes, id)
	for k := range db.enrollments {
		if k.classID == id {
			delete(db.enrollments, k)
		}
	}
	for aid, a := range db.assignments {
		if a.ClassID == id {
			db.deleteAssignment(aid)
		}
	}
	for rid, r := range db.attendance {
		if r.ClassID == id {
			delete(db.attendance, rid)
		}
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortByID[T any](list []T, id func(T) int64) {
	sort.Slice(list, func(i, j int) bool { return id(list[i]) < id(list[j]) })
}
