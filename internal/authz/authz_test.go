package authz

import (
	"fmt"
	"testing"

	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

// allRelations enumerates every combination of the five relation facts.
func allRelations() []Relation {
	rels := make([]Relation, 0, 32)
	for mask := 0; mask < 32; mask++ {
		rels = append(rels, Relation{
			Self:         mask&1 != 0,
			ClassTeacher: mask&2 != 0,
			Enrolled:     mask&4 != 0,
			Owner:        mask&8 != 0,
			Grader:       mask&16 != 0,
		})
	}
	return rels
}

func TestAdminAlwaysAllowed(t *testing.T) {
	for _, res := range AllResources {
		for _, act := range AllActions {
			for _, rel := range allRelations() {
				assert.True(t, Allow(model.RoleAdmin, res, act, rel), "%s %s %+v", res, act, rel)
			}
		}
	}
}

func TestNoRelationDeniesNonAdmin(t *testing.T) {
	for _, role := range []model.Role{model.RoleTeacher, model.RoleStudent, model.Role(""), model.Role("guest")} {
		for _, res := range AllResources {
			for _, act := range AllActions {
				assert.False(t, Allow(role, res, act, Relation{}), "%s %s %s", role, res, act)
			}
		}
	}
}

func TestAdminOnlyResources(t *testing.T) {
	full := Relation{Self: true, ClassTeacher: true, Enrolled: true, Owner: true, Grader: true}
	for _, role := range []model.Role{model.RoleTeacher, model.RoleStudent} {
		for _, res := range []Resource{ResourceUser, ResourceMetrics} {
			for _, act := range AllActions {
				assert.False(t, Allow(role, res, act, full), "%s %s %s", role, res, act)
			}
		}
		for _, act := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			assert.False(t, Allow(role, ResourceClass, act, full), "%s class %s", role, act)
		}
		assert.False(t, Allow(role, ResourceProfile, ActionDelete, full))
		assert.False(t, Allow(role, ResourceEnrollment, ActionUpdate, full))
	}
}

func TestUnknownResourceDenied(t *testing.T) {
	assert.False(t, Allow(model.RoleTeacher, Resource("school"), ActionRead, Relation{ClassTeacher: true}))
	assert.True(t, Allow(model.RoleAdmin, Resource("school"), ActionRead, Relation{}))
}

func TestOwnershipRules(t *testing.T) {
	teacher := model.RoleTeacher
	student := model.RoleStudent

	tests := []struct {
		role model.Role
		res  Resource
		act  Action
		rel  Relation
		want bool
	}{
		// profile
		{student, ResourceProfile, ActionRead, Relation{Self: true}, true},
		{student, ResourceProfile, ActionUpdate, Relation{Self: true}, true},
		{teacher, ResourceProfile, ActionCreate, Relation{Self: true}, true},
		{teacher, ResourceProfile, ActionRead, Relation{ClassTeacher: true}, false},

		// class
		{teacher, ResourceClass, ActionRead, Relation{ClassTeacher: true}, true},
		{student, ResourceClass, ActionRead, Relation{Enrolled: true}, true},
		{student, ResourceClass, ActionRead, Relation{Self: true, Owner: true}, false},

		// enrollment
		{teacher, ResourceEnrollment, ActionCreate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceEnrollment, ActionDelete, Relation{ClassTeacher: true}, true},
		{teacher, ResourceEnrollment, ActionRead, Relation{ClassTeacher: true}, true},
		{student, ResourceEnrollment, ActionRead, Relation{Enrolled: true}, false},
		{student, ResourceEnrollment, ActionCreate, Relation{Self: true}, false},

		// assignment
		{teacher, ResourceAssignment, ActionCreate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceAssignment, ActionUpdate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceAssignment, ActionDelete, Relation{ClassTeacher: true}, true},
		{teacher, ResourceAssignment, ActionCreate, Relation{}, false},
		{student, ResourceAssignment, ActionCreate, Relation{ClassTeacher: true}, false},
		{student, ResourceAssignment, ActionRead, Relation{Enrolled: true}, true},
		{student, ResourceAssignment, ActionUpdate, Relation{Enrolled: true}, false},

		// submission
		{student, ResourceSubmission, ActionCreate, Relation{Self: true}, true},
		{teacher, ResourceSubmission, ActionCreate, Relation{Self: true, ClassTeacher: true}, false},
		{student, ResourceSubmission, ActionRead, Relation{Owner: true}, true},
		{student, ResourceSubmission, ActionRead, Relation{Enrolled: true}, false},
		{student, ResourceSubmission, ActionUpdate, Relation{Owner: true}, true},
		{teacher, ResourceSubmission, ActionUpdate, Relation{ClassTeacher: true}, false},
		{teacher, ResourceSubmission, ActionRead, Relation{ClassTeacher: true}, true},
		{teacher, ResourceSubmission, ActionDelete, Relation{ClassTeacher: true}, true},
		{student, ResourceSubmission, ActionDelete, Relation{Owner: true}, false},

		// grade
		{teacher, ResourceGrade, ActionCreate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceGrade, ActionCreate, Relation{Grader: true}, false},
		{teacher, ResourceGrade, ActionUpdate, Relation{ClassTeacher: true}, false},
		{teacher, ResourceGrade, ActionUpdate, Relation{ClassTeacher: true, Grader: true}, true},
		{teacher, ResourceGrade, ActionDelete, Relation{ClassTeacher: true, Grader: true}, true},
		{teacher, ResourceGrade, ActionDelete, Relation{Grader: true}, false},
		{student, ResourceGrade, ActionRead, Relation{Owner: true}, true},
		{student, ResourceGrade, ActionUpdate, Relation{Owner: true}, false},

		// attendance
		{teacher, ResourceAttendance, ActionCreate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceAttendance, ActionUpdate, Relation{ClassTeacher: true}, true},
		{teacher, ResourceAttendance, ActionDelete, Relation{ClassTeacher: true}, true},
		{student, ResourceAttendance, ActionRead, Relation{Owner: true}, true},
		{student, ResourceAttendance, ActionCreate, Relation{Owner: true, Self: true}, false},
		{student, ResourceAttendance, ActionUpdate, Relation{Owner: true}, false},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s/%s/%s/%+v", tt.role, tt.res, tt.act, tt.rel)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.role, tt.res, tt.act, tt.rel))
		})
	}
}

// Mutations on class-scoped resources are never allowed for a non-admin who
// neither teaches the class nor owns the record.
func TestStrangerCannotMutate(t *testing.T) {
	stranger := Relation{Enrolled: true}
	mutations := []Action{ActionCreate, ActionUpdate, ActionDelete}
	for _, role := range []model.Role{model.RoleTeacher, model.RoleStudent} {
		for _, res := range []Resource{ResourceClass, ResourceEnrollment, ResourceAssignment, ResourceGrade, ResourceAttendance} {
			for _, act := range mutations {
				assert.False(t, Allow(role, res, act, stranger), "%s %s %s", role, res, act)
			}
		}
		assert.False(t, Allow(role, ResourceSubmission, ActionUpdate, stranger))
		assert.False(t, Allow(role, ResourceSubmission, ActionDelete, stranger))
	}
}
