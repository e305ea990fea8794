package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// AttendanceService records and reports class attendance.
type AttendanceService struct {
	access
	attendance AttendanceStore
	events     *EventService
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(
	classes ClassStore,
	enrollments EnrollmentStore,
	attendance AttendanceStore,
	events *EventService,
) *AttendanceService {
	return &AttendanceService{
		access:     access{classes: classes, enrollments: enrollments},
		attendance: attendance,
		events:     events,
	}
}

// Mark records one student's attendance for a day. The student must be on
// the class roster and may have only one record per class and day.
func (s *AttendanceService) Mark(ctx context.Context, ident *model.Identity, req model.MarkAttendanceRequest) (*model.Attendance, error) {
	studentID, date, status, err := parseMark(req.StudentID, req.Date, req.Status)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.loadClass(ctx, ident, req.ClassID, authz.ResourceAttendance, authz.ActionCreate); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, req.ClassID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	rec := &model.Attendance{
		ClassID:   req.ClassID,
		StudentID: studentID,
		Date:      date,
		Status:    status,
		MarkedBy:  ident.UserID,
	}
	if err := s.attendance.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	s.events.Publish(ctx, model.EventAttendanceMarked, rec.ClassID, rec.ID, ident.UserID, rec)
	return rec, nil
}

// MarkBulk records attendance for many students of one class on one day.
// Students that already have a record for that day are skipped.
func (s *AttendanceService) MarkBulk(ctx context.Context, ident *model.Identity, req model.BulkAttendanceRequest) (*model.BulkAttendanceResult, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}

	if _, _, err := s.loadClass(ctx, ident, req.ClassID, authz.ResourceAttendance, authz.ActionCreate); err != nil {
		return nil, err
	}

	roster, err := s.enrollments.ListByClass(ctx, req.ClassID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	onRoster := make(map[uuid.UUID]bool, len(roster))
	for _, e := range roster {
		onRoster[e.StudentID] = true
	}

	records := make([]model.Attendance, 0, len(req.Records))
	fields := map[string]string{}
	seen := make(map[uuid.UUID]bool, len(req.Records))
	for i, r := range req.Records {
		key := fmt.Sprintf("records[%d]", i)

		studentID, err := uuid.Parse(r.StudentID)
		if err != nil {
			fields[key+".student_id"] = "must be a valid UUID"
			continue
		}
		status := model.AttendanceStatus(r.Status)
		if !status.Valid() {
			fields[key+".status"] = "must be one of present, absent, late, excused"
			continue
		}
		if !onRoster[studentID] {
			fields[key+".student_id"] = "student is not enrolled in the class"
			continue
		}
		if seen[studentID] {
			fields[key+".student_id"] = "duplicate student in request"
			continue
		}
		seen[studentID] = true

		records = append(records, model.Attendance{
			ClassID:   req.ClassID,
			StudentID: studentID,
			Date:      date,
			Status:    status,
			MarkedBy:  ident.UserID,
		})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	created, err := s.attendance.CreateMany(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	inserted := make(map[uuid.UUID]bool, len(created))
	for _, c := range created {
		inserted[c.StudentID] = true
	}
	result := &model.BulkAttendanceResult{Created: created, Skipped: []uuid.UUID{}}
	for _, r := range records {
		if !inserted[r.StudentID] {
			result.Skipped = append(result.Skipped, r.StudentID)
		}
	}

	for i := range created {
		s.events.Publish(ctx, model.EventAttendanceMarked, req.ClassID, created[i].ID, ident.UserID, created[i])
	}
	return result, nil
}

// ListByClass returns a class's attendance, optionally for a single day.
func (s *AttendanceService) ListByClass(ctx context.Context, ident *model.Identity, classID int64, date *model.Date) ([]model.Attendance, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceAttendance, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.attendance.List(ctx, model.AttendanceFilter{ClassID: classID, Date: date})
}

// ListByStudent returns a student's attendance across classes. Records the
// caller may not read are left out; a student asking about someone else
// is refused outright.
func (s *AttendanceService) ListByStudent(ctx context.Context, ident *model.Identity, studentID uuid.UUID) ([]model.Attendance, error) {
	if ident.Role == model.RoleStudent && studentID != ident.UserID {
		return nil, fmt.Errorf("%w: read attendance", ErrForbidden)
	}

	records, err := s.attendance.List(ctx, model.AttendanceFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}
	if ident.IsAdmin() {
		return records, nil
	}

	visible := make([]model.Attendance, 0, len(records))
	classes := map[int64]authz.Relation{}
	for _, rec := range records {
		rel, ok := classes[rec.ClassID]
		if !ok {
			class, err := s.classes.GetByID(ctx, rec.ClassID)
			if err != nil {
				return nil, fmt.Errorf("get class %d: %w", rec.ClassID, err)
			}
			if rel, err = s.classRelation(ctx, ident, class); err != nil {
				return nil, err
			}
			classes[rec.ClassID] = rel
		}
		rel.Owner = rec.StudentID == ident.UserID
		if authz.Allow(ident.Role, authz.ResourceAttendance, authz.ActionRead, rel) {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

// Summary aggregates a class-day: counts per status, unmarked students and
// the share of the roster that was present or late.
func (s *AttendanceService) Summary(ctx context.Context, ident *model.Identity, classID int64, date model.Date) (*model.AttendanceSummary, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceAttendance, authz.ActionRead); err != nil {
		return nil, err
	}

	total, err := s.enrollments.CountByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("count roster: %w", err)
	}
	counts, err := s.attendance.CountByStatus(ctx, classID, date)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	summary := &model.AttendanceSummary{
		ClassID:       classID,
		Date:          date,
		TotalStudents: total,
		Counts:        make(map[model.AttendanceStatus]int, len(model.AllAttendanceStatuses)),
	}
	marked := 0
	for _, st := range model.AllAttendanceStatuses {
		summary.Counts[st] = counts[st]
		marked += counts[st]
	}
	if total > marked {
		summary.Unmarked = total - marked
	}
	if total > 0 {
		attended := float64(counts[model.AttendancePresent] + counts[model.AttendanceLate])
		summary.Percentage = math.Round(attended/float64(total)*10000) / 100
	}
	return summary, nil
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, ident *model.Identity, id int64) (*model.Attendance, error) {
	return s.load(ctx, ident, id, authz.ActionRead)
}

// Update changes the status of a record. Any valid status may replace any other.
func (s *AttendanceService) Update(ctx context.Context, ident *model.Identity, id int64, req model.UpdateAttendanceRequest) (*model.Attendance, error) {
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, NewValidationError("status", "must be one of present, absent, late, excused")
	}

	rec, err := s.load(ctx, ident, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	rec.Status = status
	rec.MarkedBy = ident.UserID
	if err := s.attendance.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}

	s.events.Publish(ctx, model.EventAttendanceMarked, rec.ClassID, rec.ID, ident.UserID, rec)
	return rec, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, ident *model.Identity, id int64) error {
	if _, err := s.load(ctx, ident, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.attendance.Delete(ctx, id)
}

func (s *AttendanceService) load(ctx context.Context, ident *model.Identity, id int64, act authz.Action) (*model.Attendance, error) {
	rec, err := s.attendance.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get attendance %d: %w", id, err)
	}
	class, err := s.classes.GetByID(ctx, rec.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class %d: %w", rec.ClassID, err)
	}

	rel, err := s.classRelation(ctx, ident, class)
	if err != nil {
		return nil, err
	}
	rel.Owner = rec.StudentID == ident.UserID

	if err := authorize(ident, authz.ResourceAttendance, act, rel); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseMark(rawStudent, rawDate, rawStatus string) (uuid.UUID, model.Date, model.AttendanceStatus, error) {
	studentID, err := uuid.Parse(rawStudent)
	if err != nil {
		return uuid.Nil, model.Date{}, "", NewValidationError("student_id", "must be a valid UUID")
	}
	date, err := model.ParseDate(rawDate)
	if err != nil {
		return uuid.Nil, model.Date{}, "", NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}
	status := model.AttendanceStatus(rawStatus)
	if !status.Valid() {
		return uuid.Nil, model.Date{}, "", NewValidationError("status", "must be one of present, absent, late, excused")
	}
	return studentID, date, status, nil
}
