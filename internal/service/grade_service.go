package service

import (
	"context"
	"fmt"

	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// GradeService manages marks given to submissions.
type GradeService struct {
	access
	assignments AssignmentStore
	submissions SubmissionStore
	grades      GradeStore
	events      *EventService
}

// NewGradeService creates a new GradeService.
func NewGradeService(
	classes ClassStore,
	enrollments EnrollmentStore,
	assignments AssignmentStore,
	submissions SubmissionStore,
	grades GradeStore,
	events *EventService,
) *GradeService {
	return &GradeService{
		access:      access{classes: classes, enrollments: enrollments},
		assignments: assignments,
		submissions: submissions,
		grades:      grades,
		events:      events,
	}
}

// Create grades a submission. A submission carries at most one grade.
func (s *GradeService) Create(ctx context.Context, ident *model.Identity, req model.CreateGradeRequest) (*model.Grade, error) {
	if req.Score == nil {
		return nil, NewValidationError("score", "score is required")
	}
	if err := validateScore(*req.Score); err != nil {
		return nil, err
	}

	sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", req.SubmissionID, err)
	}
	class, rel, err := submissionRelation(ctx, &s.access, s.assignments, ident, sub)
	if err != nil {
		return nil, err
	}
	if err := authorize(ident, authz.ResourceGrade, authz.ActionCreate, rel); err != nil {
		return nil, err
	}

	g := &model.Grade{
		SubmissionID: sub.ID,
		Score:        *req.Score,
		Feedback:     trimOptional(req.Feedback),
		GradedBy:     ident.UserID,
	}
	if err := s.grades.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create grade: %w", err)
	}

	s.events.Publish(ctx, model.EventGradePosted, class.ID, g.ID, ident.UserID, g)
	return g, nil
}

// ListMine returns the grades of the caller's own submissions.
func (s *GradeService) ListMine(ctx context.Context, ident *model.Identity) ([]model.Grade, error) {
	if ident.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: only students have grades", ErrForbidden)
	}
	return s.grades.ListByStudent(ctx, ident.UserID)
}

// ListByAssignment returns every grade given for an assignment.
func (s *GradeService) ListByAssignment(ctx context.Context, ident *model.Identity, assignmentID int64) ([]model.Grade, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}
	if _, _, err := s.loadClass(ctx, ident, a.ClassID, authz.ResourceGrade, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.grades.ListByAssignment(ctx, assignmentID)
}

// GetBySubmission returns the grade of a submission.
func (s *GradeService) GetBySubmission(ctx context.Context, ident *model.Identity, submissionID int64) (*model.Grade, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", submissionID, err)
	}
	_, rel, err := submissionRelation(ctx, &s.access, s.assignments, ident, sub)
	if err != nil {
		return nil, err
	}
	if err := authorize(ident, authz.ResourceGrade, authz.ActionRead, rel); err != nil {
		return nil, err
	}

	g, err := s.grades.GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get grade for submission %d: %w", submissionID, err)
	}
	return g, nil
}

// Get returns one grade.
func (s *GradeService) Get(ctx context.Context, ident *model.Identity, id int64) (*model.Grade, error) {
	g, _, err := s.load(ctx, ident, id, authz.ActionRead)
	return g, err
}

// Update changes a grade. Only the teacher who gave it may change it.
func (s *GradeService) Update(ctx context.Context, ident *model.Identity, id int64, req model.UpdateGradeRequest) (*model.Grade, error) {
	g, class, err := s.load(ctx, ident, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Score != nil {
		if err := validateScore(*req.Score); err != nil {
			return nil, err
		}
		g.Score = *req.Score
	}
	if req.Feedback != nil {
		g.Feedback = trimOptional(req.Feedback)
	}

	if err := s.grades.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("update grade: %w", err)
	}

	s.events.Publish(ctx, model.EventGradePosted, class.ID, g.ID, ident.UserID, g)
	return g, nil
}

// Delete removes a grade. Only the teacher who gave it may remove it.
func (s *GradeService) Delete(ctx context.Context, ident *model.Identity, id int64) error {
	if _, _, err := s.load(ctx, ident, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.grades.Delete(ctx, id)
}

func (s *GradeService) load(ctx context.Context, ident *model.Identity, id int64, act authz.Action) (*model.Grade, *model.Class, error) {
	g, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get grade %d: %w", id, err)
	}
	sub, err := s.submissions.GetByID(ctx, g.SubmissionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get submission %d: %w", g.SubmissionID, err)
	}

	class, rel, err := submissionRelation(ctx, &s.access, s.assignments, ident, sub)
	if err != nil {
		return nil, nil, err
	}
	rel.Grader = g.GradedBy == ident.UserID

	if err := authorize(ident, authz.ResourceGrade, act, rel); err != nil {
		return nil, nil, err
	}
	return g, class, nil
}

func validateScore(score float64) error {
	if score < 0 || score > model.MaxScore {
		return NewValidationError("score", fmt.Sprintf("must be between 0 and %d", model.MaxScore))
	}
	return nil
}
