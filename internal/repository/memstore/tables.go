package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// Profiles implements service.ProfileStore.
type Profiles struct{ db *DB }

func (s *Profiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (s *Profiles) List(_ context.Context, f model.ProfileFilter) ([]model.Profile, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	matched := []model.Profile{}
	for _, p := range s.db.profiles {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.Search != "" && !containsFold(p.FirstName, f.Search) &&
			!containsFold(p.LastName, f.Search) && !containsFold(p.Email, f.Search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := (f.Page - 1) * f.PerPage
	if start < 0 || start >= total {
		return []model.Profile{}, total, nil
	}
	end := start + f.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Profiles) Create(_ context.Context, p *model.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.profiles[p.ID]; ok {
		return uniqueViolation("profiles_pkey")
	}
	p.CreatedAt = s.db.now()
	p.UpdatedAt = p.CreatedAt
	s.db.profiles[p.ID] = *p
	return nil
}

func (s *Profiles) Update(_ context.Context, p *model.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.profiles[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cur.FirstName, cur.LastName, cur.Role = p.FirstName, p.LastName, p.Role
	cur.UpdatedAt = s.db.now()
	s.db.profiles[p.ID] = cur
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

// Classes implements service.ClassStore.
type Classes struct{ db *DB }

func (s *Classes) GetByID(_ context.Context, id int64) (*model.Class, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.classes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (s *Classes) List(_ context.Context, f model.ClassFilter) ([]model.Class, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Class{}
	for _, c := range s.db.classes {
		if f.TeacherID != nil && c.TeacherID != *f.TeacherID {
			continue
		}
		if f.StudentID != nil {
			if _, ok := s.db.enrollments[enrollKey{c.ID, *f.StudentID}]; !ok {
				continue
			}
		}
		list = append(list, c)
	}
	sortByID(list, func(c model.Class) int64 { return c.ID })
	return list, nil
}

func (s *Classes) Create(_ context.Context, c *model.Class) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.profiles[c.TeacherID]; !ok {
		return foreignKeyViolation("classes_teacher_id_fkey")
	}
	c.ID = s.db.nextID()
	c.CreatedAt = s.db.now()
	c.UpdatedAt = c.CreatedAt
	s.db.classes[c.ID] = *c
	return nil
}

func (s *Classes) Update(_ context.Context, c *model.Class) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.classes[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	if _, ok := s.db.profiles[c.TeacherID]; !ok {
		return foreignKeyViolation("classes_teacher_id_fkey")
	}
	c.UpdatedAt = s.db.now()
	s.db.classes[c.ID] = *c
	return nil
}

func (s *Classes) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.classes[id]; !ok {
		return pgx.ErrNoRows
	}
	s.db.deleteClass(id)
	return nil
}

// Enrollments implements service.EnrollmentStore.
type Enrollments struct{ db *DB }

func (s *Enrollments) IsEnrolled(_ context.Context, classID int64, studentID uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, ok := s.db.enrollments[enrollKey{classID, studentID}]
	return ok, nil
}

func (s *Enrollments) ListByClass(_ context.Context, classID int64) ([]model.Enrollment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Enrollment{}
	for k, e := range s.db.enrollments {
		if k.classID == classID {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StudentID.String() < list[j].StudentID.String() })
	return list, nil
}

func (s *Enrollments) CountByClass(ctx context.Context, classID int64) (int, error) {
	list, err := s.ListByClass(ctx, classID)
	return len(list), err
}

func (s *Enrollments) Create(_ context.Context, e *model.Enrollment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.classes[e.ClassID]; !ok {
		return foreignKeyViolation("class_students_class_id_fkey")
	}
	if _, ok := s.db.profiles[e.StudentID]; !ok {
		return foreignKeyViolation("class_students_student_id_fkey")
	}
	key := enrollKey{e.ClassID, e.StudentID}
	if _, ok := s.db.enrollments[key]; ok {
		return uniqueViolation("class_students_pkey")
	}
	e.EnrolledAt = s.db.now()
	s.db.enrollments[key] = *e
	return nil
}

func (s *Enrollments) Delete(_ context.Context, classID int64, studentID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := enrollKey{classID, studentID}
	if _, ok := s.db.enrollments[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.db.enrollments, key)
	return nil
}

// Assignments implements service.AssignmentStore.
type Assignments struct{ db *DB }

func (s *Assignments) GetByID(_ context.Context, id int64) (*model.Assignment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (s *Assignments) ListByClass(_ context.Context, classID int64) ([]model.Assignment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Assignment{}
	for _, a := range s.db.assignments {
		if a.ClassID == classID {
			list = append(list, a)
		}
	}
	sortByID(list, func(a model.Assignment) int64 { return a.ID })
	return list, nil
}

func (s *Assignments) Create(_ context.Context, a *model.Assignment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.classes[a.ClassID]; !ok {
		return foreignKeyViolation("assignments_class_id_fkey")
	}
	a.ID = s.db.nextID()
	a.CreatedAt = s.db.now()
	a.UpdatedAt = a.CreatedAt
	s.db.assignments[a.ID] = *a
	return nil
}

func (s *Assignments) Update(_ context.Context, a *model.Assignment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.assignments[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	a.UpdatedAt = s.db.now()
	s.db.assignments[a.ID] = *a
	return nil
}

func (s *Assignments) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.assignments[id]; !ok {
		return pgx.ErrNoRows
	}
	s.db.deleteAssignment(id)
	return nil
}

// Submissions implements service.SubmissionStore.
type Submissions struct{ db *DB }

func (s *Submissions) GetByID(_ context.Context, id int64) (*model.Submission, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	sub, ok := s.db.submissions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &sub, nil
}

func (s *Submissions) filter(keep func(model.Submission) bool) []model.Submission {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Submission{}
	for _, sub := range s.db.submissions {
		if keep(sub) {
			list = append(list, sub)
		}
	}
	sortByID(list, func(sub model.Submission) int64 { return sub.ID })
	return list
}

func (s *Submissions) ListByAssignment(_ context.Context, assignmentID int64) ([]model.Submission, error) {
	return s.filter(func(sub model.Submission) bool { return sub.AssignmentID == assignmentID }), nil
}

func (s *Submissions) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Submission, error) {
	return s.filter(func(sub model.Submission) bool { return sub.StudentID == studentID }), nil
}

func (s *Submissions) Create(_ context.Context, sub *model.Submission) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.assignments[sub.AssignmentID]; !ok {
		return foreignKeyViolation("submissions_assignment_id_fkey")
	}
	for _, existing := range s.db.submissions {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			return uniqueViolation("submissions_assignment_id_student_id_key")
		}
	}
	sub.ID = s.db.nextID()
	sub.SubmittedAt = s.db.now()
	sub.UpdatedAt = sub.SubmittedAt
	s.db.submissions[sub.ID] = *sub
	return nil
}

func (s *Submissions) Update(_ context.Context, sub *model.Submission) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.submissions[sub.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cur.FileURL, cur.Notes = sub.FileURL, sub.Notes
	cur.UpdatedAt = s.db.now()
	s.db.submissions[sub.ID] = cur
	sub.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *Submissions) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.submissions[id]; !ok {
		return pgx.ErrNoRows
	}
	s.db.deleteSubmission(id)
	return nil
}

// Grades implements service.GradeStore.
type Grades struct{ db *DB }

func (s *Grades) GetByID(_ context.Context, id int64) (*model.Grade, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g, ok := s.db.grades[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &g, nil
}

func (s *Grades) GetBySubmission(_ context.Context, submissionID int64) (*model.Grade, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, g := range s.db.grades {
		if g.SubmissionID == submissionID {
			return &g, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *Grades) filter(keep func(model.Submission) bool) []model.Grade {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Grade{}
	for _, g := range s.db.grades {
		if sub, ok := s.db.submissions[g.SubmissionID]; ok && keep(sub) {
			list = append(list, g)
		}
	}
	sortByID(list, func(g model.Grade) int64 { return g.ID })
	return list
}

func (s *Grades) ListByAssignment(_ context.Context, assignmentID int64) ([]model.Grade, error) {
	return s.filter(func(sub model.Submission) bool { return sub.AssignmentID == assignmentID }), nil
}

func (s *Grades) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Grade, error) {
	return s.filter(func(sub model.Submission) bool { return sub.StudentID == studentID }), nil
}

func (s *Grades) Create(_ context.Context, g *model.Grade) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.submissions[g.SubmissionID]; !ok {
		return foreignKeyViolation("grades_submission_id_fkey")
	}
	for _, existing := range s.db.grades {
		if existing.SubmissionID == g.SubmissionID {
			return uniqueViolation("grades_submission_id_key")
		}
	}
	g.ID = s.db.nextID()
	g.GradedAt = s.db.now()
	g.UpdatedAt = g.GradedAt
	s.db.grades[g.ID] = *g
	return nil
}

func (s *Grades) Update(_ context.Context, g *model.Grade) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.grades[g.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cur.Score, cur.Feedback = g.Score, g.Feedback
	cur.UpdatedAt = s.db.now()
	s.db.grades[g.ID] = cur
	g.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *Grades) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.grades[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.db.grades, id)
	return nil
}

// Attendance implements service.AttendanceStore.
type Attendance struct{ db *DB }

func (s *Attendance) GetByID(_ context.Context, id int64) (*model.Attendance, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.attendance[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (s *Attendance) List(_ context.Context, f model.AttendanceFilter) ([]model.Attendance, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := []model.Attendance{}
	for _, a := range s.db.attendance {
		if f.ClassID > 0 && a.ClassID != f.ClassID {
			continue
		}
		if f.StudentID != nil && a.StudentID != *f.StudentID {
			continue
		}
		if f.Date != nil && a.Date.String() != f.Date.String() {
			continue
		}
		list = append(list, a)
	}
	sortByID(list, func(a model.Attendance) int64 { return a.ID })
	return list, nil
}

// insert assumes db.mu is held.
func (s *Attendance) insert(a *model.Attendance) error {
	if _, ok := s.db.classes[a.ClassID]; !ok {
		return foreignKeyViolation("attendance_class_id_fkey")
	}
	key := attendanceKey{a.ClassID, a.StudentID, a.Date.String()}
	for _, existing := range s.db.attendance {
		if (attendanceKey{existing.ClassID, existing.StudentID, existing.Date.String()}) == key {
			return uniqueViolation("attendance_class_id_student_id_date_key")
		}
	}
	a.ID = s.db.nextID()
	a.CreatedAt = s.db.now()
	a.UpdatedAt = a.CreatedAt
	s.db.attendance[a.ID] = *a
	return nil
}

func (s *Attendance) Create(_ context.Context, a *model.Attendance) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.insert(a)
}

func (s *Attendance) CreateMany(_ context.Context, records []model.Attendance) ([]model.Attendance, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	created := []model.Attendance{}
	for _, a := range records {
		if err := s.insert(&a); err != nil {
			if isUnique(err) {
				continue
			}
			return nil, err
		}
		created = append(created, a)
	}
	return created, nil
}

func (s *Attendance) Update(_ context.Context, a *model.Attendance) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.attendance[a.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cur.Status, cur.MarkedBy = a.Status, a.MarkedBy
	cur.UpdatedAt = s.db.now()
	s.db.attendance[a.ID] = cur
	a.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *Attendance) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.attendance[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.db.attendance, id)
	return nil
}

func (s *Attendance) CountByStatus(_ context.Context, classID int64, date model.Date) (map[model.AttendanceStatus]int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	counts := map[model.AttendanceStatus]int{}
	for _, a := range s.db.attendance {
		if a.ClassID == classID && a.Date.String() == date.String() {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// Metrics implements service.MetricsStore.
type Metrics struct{ db *DB }

func (s *Metrics) Counts(_ context.Context) (*model.Metrics, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m := &model.Metrics{UsersByRole: map[model.Role]int{}}
	for _, role := range model.AllRoles {
		m.UsersByRole[role] = 0
	}
	for _, p := range s.db.profiles {
		m.UsersByRole[p.Role]++
		m.TotalUsers++
	}

	students := map[uuid.UUID]bool{}
	for k := range s.db.enrollments {
		students[k.studentID] = true
	}

	m.TotalClasses = len(s.db.classes)
	m.StudentsEnrolled = len(students)
	m.AssignmentsCreated = len(s.db.assignments)
	m.SubmissionsReceived = len(s.db.submissions)
	m.GradesEntered = len(s.db.grades)
	m.AttendanceRecords = len(s.db.attendance)
	return m, nil
}
