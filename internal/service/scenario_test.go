package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A teacher T runs a class with student S enrolled. S2 is a student outside
// the class and T2 teaches something else.
func TestClassroomScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	otherTeacher := f.user(t, model.RoleTeacher, "theo")
	student := f.user(t, model.RoleStudent, "sam")
	outsider := f.user(t, model.RoleStudent, "sol")

	class := f.class(t, admin, teacher, student)
	asg := f.assignment(t, teacher, class.ID)

	t.Run("only the enrolled student can submit", func(t *testing.T) {
		_, err := f.submissions.Create(ctx, outsider, model.CreateSubmissionRequest{
			AssignmentID: asg.ID, Notes: strPtr("mine too"),
		})
		assert.ErrorIs(t, err, service.ErrNotEnrolled)
		assert.ErrorIs(t, err, service.ErrConflict)

		_, err = f.submissions.Create(ctx, teacher, model.CreateSubmissionRequest{
			AssignmentID: asg.ID, Notes: strPtr("teachers do not submit"),
		})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	sub, err := f.submissions.Create(ctx, student, model.CreateSubmissionRequest{
		AssignmentID: asg.ID,
		FileURL:      strPtr("https://files.example.com/essay.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, student.UserID, sub.StudentID)

	t.Run("a second submission conflicts", func(t *testing.T) {
		_, err := f.submissions.Create(ctx, student, model.CreateSubmissionRequest{
			AssignmentID: asg.ID, Notes: strPtr("again"),
		})
		require.Error(t, err)
	})

	t.Run("submission visibility", func(t *testing.T) {
		_, err := f.submissions.Get(ctx, student, sub.ID)
		assert.NoError(t, err)
		_, err = f.submissions.Get(ctx, teacher, sub.ID)
		assert.NoError(t, err)
		_, err = f.submissions.Get(ctx, outsider, sub.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.submissions.Get(ctx, otherTeacher, sub.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("only the class teacher grades", func(t *testing.T) {
		_, err := f.grades.Create(ctx, otherTeacher, model.CreateGradeRequest{SubmissionID: sub.ID, Score: floatPtr(50)})
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.grades.Create(ctx, student, model.CreateGradeRequest{SubmissionID: sub.ID, Score: floatPtr(100)})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	grade, err := f.grades.Create(ctx, teacher, model.CreateGradeRequest{
		SubmissionID: sub.ID,
		Score:        floatPtr(88.5),
		Feedback:     strPtr("Good structure"),
	})
	require.NoError(t, err)
	assert.Equal(t, teacher.UserID, grade.GradedBy)

	t.Run("grade visibility", func(t *testing.T) {
		got, err := f.grades.GetBySubmission(ctx, student, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 88.5, got.Score)

		mine, err := f.grades.ListMine(ctx, student)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		_, err = f.grades.Get(ctx, outsider, grade.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.grades.ListMine(ctx, teacher)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("grade changes are limited to the grader and admins", func(t *testing.T) {
		_, err := f.grades.Update(ctx, otherTeacher, grade.ID, model.UpdateGradeRequest{Score: floatPtr(10)})
		assert.ErrorIs(t, err, service.ErrForbidden)

		updated, err := f.grades.Update(ctx, teacher, grade.ID, model.UpdateGradeRequest{Score: floatPtr(91)})
		require.NoError(t, err)
		assert.Equal(t, 91.0, updated.Score)

		_, err = f.grades.Update(ctx, admin, grade.ID, model.UpdateGradeRequest{Feedback: strPtr("Reviewed")})
		assert.NoError(t, err)

		_, err = f.grades.Update(ctx, teacher, grade.ID, model.UpdateGradeRequest{Score: floatPtr(101)})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "score")
	})

	t.Run("class visibility", func(t *testing.T) {
		_, err := f.classes.Get(ctx, student, class.ID)
		assert.NoError(t, err)
		_, err = f.classes.Get(ctx, outsider, class.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.classes.Get(ctx, otherTeacher, class.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)

		taught, err := f.classes.List(ctx, otherTeacher)
		require.NoError(t, err)
		assert.Empty(t, taught)

		enrolled, err := f.classes.List(ctx, student)
		require.NoError(t, err)
		require.Len(t, enrolled, 1)
		assert.Equal(t, class.ID, enrolled[0].ID)
	})

	t.Run("assignment writes need the class teacher", func(t *testing.T) {
		_, err := f.assignments.Create(ctx, otherTeacher, model.CreateAssignmentRequest{ClassID: class.ID, Title: "Hijack"})
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.assignments.Create(ctx, student, model.CreateAssignmentRequest{ClassID: class.ID, Title: "Homework for all"})
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = f.assignments.Update(ctx, student, asg.ID, model.UpdateAssignmentRequest{Title: strPtr("Easier")})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("only admins manage classes", func(t *testing.T) {
		_, err := f.classes.Create(ctx, teacher, model.CreateClassRequest{Name: "Side class", TeacherID: teacher.UserID.String()})
		assert.ErrorIs(t, err, service.ErrForbidden)
		err = f.classes.Delete(ctx, teacher, class.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestAssignmentRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	student := f.user(t, model.RoleStudent, "sam")
	class := f.class(t, admin, teacher, student)

	created, err := f.assignments.Create(ctx, teacher, model.CreateAssignmentRequest{
		ClassID:     class.ID,
		Title:       "Lab report",
		Description: strPtr("Photosynthesis"),
		DueDate:     strPtr("2026-11-02"),
		FileURL:     strPtr("https://files.example.com/brief.pdf"),
	})
	require.NoError(t, err)

	got, err := f.assignments.Get(ctx, student, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lab report", got.Title)
	assert.Equal(t, "Photosynthesis", *got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-11-02", got.DueDate.String())
	assert.Equal(t, "https://files.example.com/brief.pdf", *got.FileURL)
	assert.Equal(t, teacher.UserID, got.CreatedBy)

	list, err := f.assignments.ListByClass(ctx, student, class.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmissionRequiresFileOrNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	student := f.user(t, model.RoleStudent, "sam")
	class := f.class(t, admin, teacher, student)
	asg := f.assignment(t, teacher, class.ID)

	_, err := f.submissions.Create(ctx, student, model.CreateSubmissionRequest{AssignmentID: asg.ID, Notes: strPtr("   ")})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "file_url")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestEnrollRequiresStudentRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	other := f.user(t, model.RoleTeacher, "theo")
	class := f.class(t, admin, teacher)

	_, err := f.classes.Enroll(ctx, teacher, class.ID, model.EnrollStudentRequest{StudentID: other.UserID.String()})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "student_id")
}

func TestEventsReachClassSubscribers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, model.RoleAdmin, "ada")
	teacher := f.user(t, model.RoleTeacher, "tess")
	student := f.user(t, model.RoleStudent, "sam")
	outsider := f.user(t, model.RoleStudent, "sol")
	class := f.class(t, admin, teacher, student)

	_, err := f.events.Subscribe(ctx, outsider, class.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	sub, err := f.events.Subscribe(ctx, student, class.ID)
	require.NoError(t, err)
	defer sub.Close()

	asg := f.assignment(t, teacher, class.ID)

	payload := <-sub.Messages()
	var evt model.ClassEvent
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, model.EventAssignmentCreated, evt.Type)
	assert.Equal(t, class.ID, evt.ClassID)
	assert.Equal(t, asg.ID, evt.ResourceID)
	assert.Equal(t, teacher.UserID, evt.ActorID)

	assert.Equal(t, 1, f.bus.Count(config.CacheKey.ClassEventsChannel(class.ID)))
}
