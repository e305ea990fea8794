package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mark(studentID uuid.UUID, status model.AttendanceStatus) model.BulkAttendanceRecord {
	return model.BulkAttendanceRecord{StudentID: studentID.String(), Status: string(status)}
}

func TestMarkAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	otherTeacher := f.user(t, model.RoleTeacher, "theo")
	student := f.user(t, model.RoleStudent, "sam")
	outsider := f.user(t, model.RoleStudent, "sol")
	class := f.class(t, admin, teacher, student)

	req := model.MarkAttendanceRequest{
		ClassID:   class.ID,
		StudentID: student.UserID.String(),
		Date:      "2026-10-12",
		Status:    string(model.AttendancePresent),
	}

	rec, err := f.attendance.Mark(ctx, teacher, req)
	require.NoError(t, err)
	assert.Equal(t, teacher.UserID, rec.MarkedBy)
	assert.Equal(t, "2026-10-12", rec.Date.String())

	t.Run("one record per student and day", func(t *testing.T) {
		_, err := f.attendance.Mark(ctx, teacher, req)
		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "23505", pgErr.Code)
	})

	t.Run("student must be enrolled", func(t *testing.T) {
		r := req
		r.StudentID = outsider.UserID.String()
		_, err := f.attendance.Mark(ctx, teacher, r)
		assert.ErrorIs(t, err, service.ErrNotEnrolled)
	})

	t.Run("only the class teacher marks", func(t *testing.T) {
		r := req
		r.Date = "2026-10-13"
		_, err := f.attendance.Mark(ctx, otherTeacher, r)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.attendance.Mark(ctx, student, r)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("any status may replace any other", func(t *testing.T) {
		updated, err := f.attendance.Update(ctx, teacher, rec.ID, model.UpdateAttendanceRequest{Status: string(model.AttendanceExcused)})
		require.NoError(t, err)
		assert.Equal(t, model.AttendanceExcused, updated.Status)

		updated, err = f.attendance.Update(ctx, teacher, rec.ID, model.UpdateAttendanceRequest{Status: string(model.AttendanceLate)})
		require.NoError(t, err)
		assert.Equal(t, model.AttendanceLate, updated.Status)

		_, err = f.attendance.Update(ctx, teacher, rec.ID, model.UpdateAttendanceRequest{Status: "sick"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("students read only their own records", func(t *testing.T) {
		_, err := f.attendance.Get(ctx, student, rec.ID)
		assert.NoError(t, err)
		_, err = f.attendance.Get(ctx, outsider, rec.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)

		_, err = f.attendance.ListByStudent(ctx, outsider, student.UserID)
		assert.ErrorIs(t, err, service.ErrForbidden)

		own, err := f.attendance.ListByStudent(ctx, student, student.UserID)
		require.NoError(t, err)
		assert.Len(t, own, 1)

		hidden, err := f.attendance.ListByStudent(ctx, otherTeacher, student.UserID)
		require.NoError(t, err)
		assert.Empty(t, hidden)
	})
}

func TestMarkBulkSkipsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	s1 := f.user(t, model.RoleStudent, "sam")
	s2 := f.user(t, model.RoleStudent, "sara")
	class := f.class(t, admin, teacher, s1, s2)

	_, err := f.attendance.Mark(ctx, teacher, model.MarkAttendanceRequest{
		ClassID: class.ID, StudentID: s1.UserID.String(), Date: "2026-10-12", Status: "absent",
	})
	require.NoError(t, err)

	res, err := f.attendance.MarkBulk(ctx, teacher, model.BulkAttendanceRequest{
		ClassID: class.ID,
		Date:    "2026-10-12",
		Records: []model.BulkAttendanceRecord{
			mark(s1.UserID, model.AttendancePresent),
			mark(s2.UserID, model.AttendanceLate),
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, s2.UserID, res.Created[0].StudentID)
	assert.Equal(t, []uuid.UUID{s1.UserID}, res.Skipped)

	day, _ := model.ParseDate("2026-10-12")
	records, err := f.attendance.ListByClass(ctx, teacher, class.ID, &day)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMarkBulkRejectsRepeatedStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	student := f.user(t, model.RoleStudent, "sam")
	class := f.class(t, admin, teacher, student)

	_, err := f.attendance.MarkBulk(ctx, teacher, model.BulkAttendanceRequest{
		ClassID: class.ID,
		Date:    "2026-10-12",
		Records: []model.BulkAttendanceRecord{
			mark(student.UserID, model.AttendancePresent),
			mark(student.UserID, model.AttendanceAbsent),
		},
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duplicate student in request", verr.Fields["records[1].student_id"])
	assert.NotContains(t, verr.Fields, "records[0].student_id")

	records, err := f.attendance.ListByClass(ctx, teacher, class.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMarkBulkRejectsUnknownStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	student := f.user(t, model.RoleStudent, "sam")
	outsider := f.user(t, model.RoleStudent, "sol")
	class := f.class(t, admin, teacher, student)

	_, err := f.attendance.MarkBulk(ctx, teacher, model.BulkAttendanceRequest{
		ClassID: class.ID,
		Date:    "2026-10-12",
		Records: []model.BulkAttendanceRecord{
			mark(student.UserID, model.AttendancePresent),
			mark(outsider.UserID, model.AttendancePresent),
			{StudentID: student.UserID.String(), Status: "asleep"},
		},
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "records[1].student_id")
	assert.Contains(t, verr.Fields, "records[2].status")
	assert.NotContains(t, verr.Fields, "records[0].student_id")

	records, err := f.attendance.ListByClass(ctx, teacher, class.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, records, "a rejected batch writes nothing")
}

func TestAttendanceSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	s1 := f.user(t, model.RoleStudent, "sam")
	s2 := f.user(t, model.RoleStudent, "sara")
	s3 := f.user(t, model.RoleStudent, "seth")
	class := f.class(t, admin, teacher, s1, s2, s3)

	_, err := f.attendance.MarkBulk(ctx, teacher, model.BulkAttendanceRequest{
		ClassID: class.ID,
		Date:    "2026-10-12",
		Records: []model.BulkAttendanceRecord{
			mark(s1.UserID, model.AttendancePresent),
			mark(s2.UserID, model.AttendanceLate),
		},
	})
	require.NoError(t, err)

	day, _ := model.ParseDate("2026-10-12")
	summary, err := f.attendance.Summary(ctx, teacher, class.ID, day)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalStudents)
	assert.Equal(t, 1, summary.Counts[model.AttendancePresent])
	assert.Equal(t, 1, summary.Counts[model.AttendanceLate])
	assert.Equal(t, 0, summary.Counts[model.AttendanceAbsent])
	assert.Equal(t, 0, summary.Counts[model.AttendanceExcused])
	assert.Equal(t, 1, summary.Unmarked)
	assert.Equal(t, 66.67, summary.Percentage)

	empty, err := f.attendance.Summary(ctx, teacher, class.ID, model.NewDate(day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, 3, empty.Unmarked)
	assert.Zero(t, empty.Percentage)
}
