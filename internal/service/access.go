package service

import (
	"context"
	"fmt"

	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// access loads the relationship facts the authorization guard needs.
type access struct {
	classes     ClassStore
	enrollments EnrollmentStore
}

// authorize runs the guard and converts a denial into ErrForbidden.
func authorize(ident *model.Identity, res authz.Resource, act authz.Action, rel authz.Relation) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	if !authz.Allow(ident.Role, res, act, rel) {
		return fmt.Errorf("%w: %s %s", ErrForbidden, act, res)
	}
	return nil
}

// classRelation computes the caller's relation to a class. Enrollment is only
// looked up for students; admins skip the lookups entirely.
func (a *access) classRelation(ctx context.Context, ident *model.Identity, class *model.Class) (authz.Relation, error) {
	var rel authz.Relation
	if ident.IsAdmin() {
		return rel, nil
	}

	rel.ClassTeacher = class.TeacherID == ident.UserID
	if ident.Role == model.RoleStudent {
		enrolled, err := a.enrollments.IsEnrolled(ctx, class.ID, ident.UserID)
		if err != nil {
			return rel, fmt.Errorf("check enrollment: %w", err)
		}
		rel.Enrolled = enrolled
	}
	return rel, nil
}

// loadClass fetches a class and authorizes act on res within it.
func (a *access) loadClass(
	ctx context.Context,
	ident *model.Identity,
	classID int64,
	res authz.Resource,
	act authz.Action,
) (*model.Class, authz.Relation, error) {
	class, err := a.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, authz.Relation{}, fmt.Errorf("get class %d: %w", classID, err)
	}

	rel, err := a.classRelation(ctx, ident, class)
	if err != nil {
		return nil, rel, err
	}

	if err := authorize(ident, res, act, rel); err != nil {
		return nil, rel, err
	}
	return class, rel, nil
}
