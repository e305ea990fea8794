// Package authz decides whether a caller may perform an action on a resource.
//
// The decision is a pure function of the caller's role, the resource type, the
// action and a set of relationship facts the caller has with the target. The
// facts are loaded by the service layer; nothing here touches the store.
package authz

import "github.com/learnmate/learnmate-backend/internal/model"

// Action is the operation requested on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllActions lists every action.
var AllActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

// Resource is the entity type an action targets.
type Resource string

const (
	ResourceProfile    Resource = "profile"
	ResourceUser       Resource = "user"
	ResourceMetrics    Resource = "metrics"
	ResourceClass      Resource = "class"
	ResourceEnrollment Resource = "enrollment"
	ResourceAssignment Resource = "assignment"
	ResourceSubmission Resource = "submission"
	ResourceGrade      Resource = "grade"
	ResourceAttendance Resource = "attendance"
)

// AllResources lists every resource type.
var AllResources = []Resource{
	ResourceProfile,
	ResourceUser,
	ResourceMetrics,
	ResourceClass,
	ResourceEnrollment,
	ResourceAssignment,
	ResourceSubmission,
	ResourceGrade,
	ResourceAttendance,
}

// Relation holds the ownership facts between the caller and the target.
type Relation struct {
	// Self: the target is the caller's own user record, or a record the caller
	// is creating for themselves.
	Self bool
	// ClassTeacher: the caller is the teacher of the class the target belongs to.
	ClassTeacher bool
	// Enrolled: the caller is on the roster of that class.
	Enrolled bool
	// Owner: the caller is the student a submission, grade or attendance
	// record is about.
	Owner bool
	// Grader: the caller entered the grade.
	Grader bool
}

type rule func(role model.Role, rel Relation) bool

var rules = map[Resource]map[Action]rule{
	ResourceProfile: {
		ActionRead:   self,
		ActionCreate: self,
		ActionUpdate: self,
	},
	ResourceClass: {
		ActionRead: teacherOrEnrolled,
	},
	ResourceEnrollment: {
		ActionRead:   classTeacher,
		ActionCreate: classTeacher,
		ActionDelete: classTeacher,
	},
	ResourceAssignment: {
		ActionRead:   teacherOrEnrolled,
		ActionCreate: teachingTeacher,
		ActionUpdate: teachingTeacher,
		ActionDelete: teachingTeacher,
	},
	ResourceSubmission: {
		ActionRead: ownerOrTeacher,
		ActionCreate: func(role model.Role, rel Relation) bool {
			return role == model.RoleStudent && rel.Self
		},
		ActionUpdate: func(role model.Role, rel Relation) bool {
			return role == model.RoleStudent && rel.Owner
		},
		ActionDelete: classTeacher,
	},
	ResourceGrade: {
		ActionRead:   ownerOrTeacher,
		ActionCreate: teachingTeacher,
		ActionUpdate: gradingTeacher,
		ActionDelete: gradingTeacher,
	},
	ResourceAttendance: {
		ActionRead:   ownerOrTeacher,
		ActionCreate: teachingTeacher,
		ActionUpdate: teachingTeacher,
		ActionDelete: teachingTeacher,
	},
}

// Allow evaluates, in order: admin role allows everything; the per-resource
// ownership rule for the action; otherwise deny.
func Allow(role model.Role, res Resource, act Action, rel Relation) bool {
	if role == model.RoleAdmin {
		return true
	}
	byAction, ok := rules[res]
	if !ok {
		return false
	}
	r, ok := byAction[act]
	if !ok {
		return false
	}
	return r(role, rel)
}

func self(_ model.Role, rel Relation) bool {
	return rel.Self
}

func classTeacher(_ model.Role, rel Relation) bool {
	return rel.ClassTeacher
}

func teacherOrEnrolled(_ model.Role, rel Relation) bool {
	return rel.ClassTeacher || rel.Enrolled
}

func ownerOrTeacher(_ model.Role, rel Relation) bool {
	return rel.Owner || rel.ClassTeacher
}

// teachingTeacher also requires the teacher role so a class whose teacher was
// later demoted stops accepting their writes.
func teachingTeacher(role model.Role, rel Relation) bool {
	return role == model.RoleTeacher && rel.ClassTeacher
}

func gradingTeacher(role model.Role, rel Relation) bool {
	return role == model.RoleTeacher && rel.ClassTeacher && rel.Grader
}
