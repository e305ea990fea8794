package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidate() *govalidator.Validate {
	v := govalidator.New()
	v.SetTagName("binding")
	Register(v)
	return v
}

func strp(s string) *string { return &s }

func TestAttendanceStatusTag(t *testing.T) {
	v := newValidate()

	tests := []struct {
		status string
		valid  bool
	}{
		{"present", true},
		{"absent", true},
		{"late", true},
		{"excused", true},
		{"sick", false},
		{"PRESENT", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := v.Struct(model.UpdateAttendanceRequest{Status: tt.status})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			fields := TranslateErrors(err)
			assert.Contains(t, fields["status"], "present, absent, late, excused")
		})
	}
}

func TestBulkAttendanceNestedFieldPath(t *testing.T) {
	v := newValidate()

	err := v.Struct(model.BulkAttendanceRequest{
		ClassID: 1,
		Date:    "2024-03-01",
		Records: []model.BulkAttendanceRecord{
			{StudentID: "6f1c0f7e-3a57-4d1c-9a34-0c8a2b1f6e11", Status: "present"},
			{StudentID: "not-a-uuid", Status: "gone"},
		},
	})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Contains(t, fields, "records[1].student_id")
	assert.Contains(t, fields, "records[1].status")
	assert.NotContains(t, fields, "records[0].status")
}

func TestCreateSubmissionNeedsFileOrNotes(t *testing.T) {
	v := newValidate()

	err := v.Struct(model.CreateSubmissionRequest{AssignmentID: 3, Notes: strp("   ")})
	require.Error(t, err)
	assert.Equal(t, "file_url or notes is required", TranslateErrors(err)["file_url"])

	assert.NoError(t, v.Struct(model.CreateSubmissionRequest{AssignmentID: 3, Notes: strp("done")}))
	assert.NoError(t, v.Struct(model.CreateSubmissionRequest{AssignmentID: 3, FileURL: strp("https://files.example.com/a.pdf")}))
}

func TestGradeScoreBounds(t *testing.T) {
	v := newValidate()
	score := func(f float64) *float64 { return &f }

	assert.NoError(t, v.Struct(model.CreateGradeRequest{SubmissionID: 1, Score: score(0)}))
	assert.NoError(t, v.Struct(model.CreateGradeRequest{SubmissionID: 1, Score: score(100)}))

	err := v.Struct(model.CreateGradeRequest{SubmissionID: 1, Score: score(100.5)})
	require.Error(t, err)
	assert.Contains(t, TranslateErrors(err), "score")

	err = v.Struct(model.CreateGradeRequest{SubmissionID: 1})
	require.Error(t, err)
	assert.Contains(t, TranslateErrors(err), "score")
}

func TestNotBlank(t *testing.T) {
	v := newValidate()

	err := v.Struct(model.CreateProfileRequest{FirstName: "  ", LastName: "Okafor"})
	require.Error(t, err)
	assert.Equal(t, "first_name cannot be blank", TranslateErrors(err)["first_name"])
}

func TestTranslateNonValidationError(t *testing.T) {
	fields := TranslateErrors(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), fields["detail"])
}
