package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// ClassService manages classes and their rosters.
type ClassService struct {
	access
	profiles ProfileStore
}

// NewClassService creates a new ClassService.
func NewClassService(classes ClassStore, enrollments EnrollmentStore, profiles ProfileStore) *ClassService {
	return &ClassService{
		access:   access{classes: classes, enrollments: enrollments},
		profiles: profiles,
	}
}

// List returns the classes visible to the caller: all of them for admins,
// the ones they teach for teachers and the ones they attend for students.
func (s *ClassService) List(ctx context.Context, ident *model.Identity) ([]model.Class, error) {
	var f model.ClassFilter
	switch ident.Role {
	case model.RoleAdmin:
	case model.RoleTeacher:
		f.TeacherID = &ident.UserID
	case model.RoleStudent:
		f.StudentID = &ident.UserID
	default:
		return []model.Class{}, nil
	}
	return s.classes.List(ctx, f)
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, ident *model.Identity, id int64) (*model.Class, error) {
	class, _, err := s.loadClass(ctx, ident, id, authz.ResourceClass, authz.ActionRead)
	return class, err
}

// Create makes a new class.
func (s *ClassService) Create(ctx context.Context, ident *model.Identity, req model.CreateClassRequest) (*model.Class, error) {
	if err := authorize(ident, authz.ResourceClass, authz.ActionCreate, authz.Relation{}); err != nil {
		return nil, err
	}

	teacherID, err := s.resolveTeacher(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	class := &model.Class{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		TeacherID:   teacherID,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return class, nil
}

// Update applies a partial update to a class.
func (s *ClassService) Update(ctx context.Context, ident *model.Identity, id int64, req model.UpdateClassRequest) (*model.Class, error) {
	class, _, err := s.loadClass(ctx, ident, id, authz.ResourceClass, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		class.Description = req.Description
	}
	if req.TeacherID != nil {
		teacherID, err := s.resolveTeacher(ctx, *req.TeacherID)
		if err != nil {
			return nil, err
		}
		class.TeacherID = teacherID
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, ident *model.Identity, id int64) error {
	if _, _, err := s.loadClass(ctx, ident, id, authz.ResourceClass, authz.ActionDelete); err != nil {
		return err
	}
	return s.classes.Delete(ctx, id)
}

// Roster lists the students enrolled in a class.
func (s *ClassService) Roster(ctx context.Context, ident *model.Identity, classID int64) ([]model.Enrollment, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceEnrollment, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.enrollments.ListByClass(ctx, classID)
}

// Enroll adds a student to a class roster.
func (s *ClassService) Enroll(ctx context.Context, ident *model.Identity, classID int64, req model.EnrollStudentRequest) (*model.Enrollment, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceEnrollment, authz.ActionCreate); err != nil {
		return nil, err
	}

	studentID, err := s.resolveProfileRole(ctx, req.StudentID, "student_id", model.RoleStudent)
	if err != nil {
		return nil, err
	}

	e := &model.Enrollment{ClassID: classID, StudentID: studentID}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}
	return e, nil
}

// Unenroll removes a student from a class roster.
func (s *ClassService) Unenroll(ctx context.Context, ident *model.Identity, classID int64, studentID uuid.UUID) error {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceEnrollment, authz.ActionDelete); err != nil {
		return err
	}
	return s.enrollments.Delete(ctx, classID, studentID)
}

func (s *ClassService) resolveTeacher(ctx context.Context, raw string) (uuid.UUID, error) {
	return s.resolveProfileRole(ctx, raw, "teacher_id", model.RoleTeacher)
}

// resolveProfileRole checks that raw names an existing profile holding role.
func (s *ClassService) resolveProfileRole(ctx context.Context, raw, field string, role model.Role) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationError(field, "must be a valid UUID")
	}

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, NewValidationError(field, fmt.Sprintf("must reference an existing %s", role))
		}
		return uuid.Nil, fmt.Errorf("get profile: %w", err)
	}
	if p.Role != role {
		return uuid.Nil, NewValidationError(field, fmt.Sprintf("user is not a %s", role))
	}
	return id, nil
}
