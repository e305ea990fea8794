package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one student's answer to an assignment.
type Submission struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	FileURL      *string   `json:"file_url"`
	Notes        *string   `json:"notes"`
	SubmittedAt  time.Time `json:"submitted_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateSubmissionRequest is the payload for submitting an assignment.
// At least one of file_url and notes must be present.
type CreateSubmissionRequest struct {
	AssignmentID int64   `json:"assignment_id" binding:"required,min=1"`
	FileURL      *string `json:"file_url" binding:"omitempty,url,max=2048"`
	Notes        *string `json:"notes" binding:"omitempty,max=5000"`
}

// UpdateSubmissionRequest is a partial update of the caller's own submission.
type UpdateSubmissionRequest struct {
	FileURL *string `json:"file_url" binding:"omitempty,url,max=2048"`
	Notes   *string `json:"notes" binding:"omitempty,max=5000"`
}
