package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// SubmissionService manages student answers to assignments.
type SubmissionService struct {
	access
	assignments AssignmentStore
	submissions SubmissionStore
	events      *EventService
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	classes ClassStore,
	enrollments EnrollmentStore,
	assignments AssignmentStore,
	submissions SubmissionStore,
	events *EventService,
) *SubmissionService {
	return &SubmissionService{
		access:      access{classes: classes, enrollments: enrollments},
		assignments: assignments,
		submissions: submissions,
		events:      events,
	}
}

// Create submits the caller's answer to an assignment. The caller must be
// enrolled in the assignment's class.
func (s *SubmissionService) Create(ctx context.Context, ident *model.Identity, req model.CreateSubmissionRequest) (*model.Submission, error) {
	fileURL, notes := trimOptional(req.FileURL), trimOptional(req.Notes)
	if fileURL == nil && notes == nil {
		return nil, &ValidationError{Fields: map[string]string{
			"file_url": "file_url or notes is required",
			"notes":    "file_url or notes is required",
		}}
	}

	a, err := s.assignments.GetByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", req.AssignmentID, err)
	}
	class, err := s.classes.GetByID(ctx, a.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class %d: %w", a.ClassID, err)
	}

	rel, err := s.classRelation(ctx, ident, class)
	if err != nil {
		return nil, err
	}
	rel.Self = true
	if err := authorize(ident, authz.ResourceSubmission, authz.ActionCreate, rel); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, class.ID, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	sub := &model.Submission{
		AssignmentID: a.ID,
		StudentID:    ident.UserID,
		FileURL:      fileURL,
		Notes:        notes,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.events.Publish(ctx, model.EventSubmissionCreated, class.ID, sub.ID, ident.UserID, sub)
	return sub, nil
}

// ListMine returns the caller's own submissions.
func (s *SubmissionService) ListMine(ctx context.Context, ident *model.Identity) ([]model.Submission, error) {
	if ident.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: only students have submissions", ErrForbidden)
	}
	return s.submissions.ListByStudent(ctx, ident.UserID)
}

// ListByAssignment returns every submission for an assignment.
func (s *SubmissionService) ListByAssignment(ctx context.Context, ident *model.Identity, assignmentID int64) ([]model.Submission, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}
	if _, _, err := s.loadClass(ctx, ident, a.ClassID, authz.ResourceSubmission, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.submissions.ListByAssignment(ctx, assignmentID)
}

// Get returns one submission.
func (s *SubmissionService) Get(ctx context.Context, ident *model.Identity, id int64) (*model.Submission, error) {
	sub, _, err := s.load(ctx, ident, id, authz.ActionRead)
	return sub, err
}

// Update lets a student revise their own submission.
func (s *SubmissionService) Update(ctx context.Context, ident *model.Identity, id int64, req model.UpdateSubmissionRequest) (*model.Submission, error) {
	sub, _, err := s.load(ctx, ident, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.FileURL != nil {
		sub.FileURL = trimOptional(req.FileURL)
	}
	if req.Notes != nil {
		sub.Notes = trimOptional(req.Notes)
	}
	if sub.FileURL == nil && sub.Notes == nil {
		return nil, NewValidationError("file_url", "file_url or notes is required")
	}

	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	return sub, nil
}

// Delete removes a submission.
func (s *SubmissionService) Delete(ctx context.Context, ident *model.Identity, id int64) error {
	if _, _, err := s.load(ctx, ident, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.submissions.Delete(ctx, id)
}

// load fetches a submission and authorizes act on it. It also returns the
// class the submission belongs to.
func (s *SubmissionService) load(ctx context.Context, ident *model.Identity, id int64, act authz.Action) (*model.Submission, *model.Class, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get submission %d: %w", id, err)
	}

	class, rel, err := submissionRelation(ctx, &s.access, s.assignments, ident, sub)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(ident, authz.ResourceSubmission, act, rel); err != nil {
		return nil, nil, err
	}
	return sub, class, nil
}

// submissionRelation resolves the class of a submission and the caller's
// relation to it, including ownership.
func submissionRelation(
	ctx context.Context,
	a *access,
	assignments AssignmentStore,
	ident *model.Identity,
	sub *model.Submission,
) (*model.Class, authz.Relation, error) {
	asg, err := assignments.GetByID(ctx, sub.AssignmentID)
	if err != nil {
		return nil, authz.Relation{}, fmt.Errorf("get assignment %d: %w", sub.AssignmentID, err)
	}
	class, err := a.classes.GetByID(ctx, asg.ClassID)
	if err != nil {
		return nil, authz.Relation{}, fmt.Errorf("get class %d: %w", asg.ClassID, err)
	}

	rel, err := a.classRelation(ctx, ident, class)
	if err != nil {
		return nil, rel, err
	}
	rel.Owner = sub.StudentID == ident.UserID
	return class, rel, nil
}

// trimOptional returns nil for absent or blank strings.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
