package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// AssignmentService manages the work set for classes.
type AssignmentService struct {
	access
	assignments AssignmentStore
	events      *EventService
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	classes ClassStore,
	enrollments EnrollmentStore,
	assignments AssignmentStore,
	events *EventService,
) *AssignmentService {
	return &AssignmentService{
		access:      access{classes: classes, enrollments: enrollments},
		assignments: assignments,
		events:      events,
	}
}

// ListByClass returns the assignments of a class.
func (s *AssignmentService) ListByClass(ctx context.Context, ident *model.Identity, classID int64) ([]model.Assignment, error) {
	if _, _, err := s.loadClass(ctx, ident, classID, authz.ResourceAssignment, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.assignments.ListByClass(ctx, classID)
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, ident *model.Identity, id int64) (*model.Assignment, error) {
	a, err := s.load(ctx, ident, id, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create sets a new assignment for a class.
func (s *AssignmentService) Create(ctx context.Context, ident *model.Identity, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if _, _, err := s.loadClass(ctx, ident, req.ClassID, authz.ResourceAssignment, authz.ActionCreate); err != nil {
		return nil, err
	}

	a := &model.Assignment{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileURL:     req.FileURL,
		CreatedBy:   ident.UserID,
	}
	if req.DueDate != nil {
		due, err := model.ParseDate(*req.DueDate)
		if err != nil {
			return nil, NewValidationError("due_date", "must be a date in YYYY-MM-DD format")
		}
		a.DueDate = &due
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.events.Publish(ctx, model.EventAssignmentCreated, a.ClassID, a.ID, ident.UserID, a)
	return a, nil
}

// Update applies a partial update to an assignment.
func (s *AssignmentService) Update(ctx context.Context, ident *model.Identity, id int64, req model.UpdateAssignmentRequest) (*model.Assignment, error) {
	a, err := s.load(ctx, ident, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if req.FileURL != nil {
		a.FileURL = req.FileURL
	}
	if req.DueDate != nil {
		due, err := model.ParseDate(*req.DueDate)
		if err != nil {
			return nil, NewValidationError("due_date", "must be a date in YYYY-MM-DD format")
		}
		a.DueDate = &due
	}

	if err := s.assignments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	s.events.Publish(ctx, model.EventAssignmentUpdated, a.ClassID, a.ID, ident.UserID, a)
	return a, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, ident *model.Identity, id int64) error {
	a, err := s.load(ctx, ident, id, authz.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	s.events.Publish(ctx, model.EventAssignmentDeleted, a.ClassID, a.ID, ident.UserID, nil)
	return nil
}

// load fetches an assignment and authorizes act on it.
func (s *AssignmentService) load(ctx context.Context, ident *model.Identity, id int64, act authz.Action) (*model.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", id, err)
	}
	if _, _, err := s.loadClass(ctx, ident, a.ClassID, authz.ResourceAssignment, act); err != nil {
		return nil, err
	}
	return a, nil
}
