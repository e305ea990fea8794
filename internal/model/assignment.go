package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a piece of work set for one class.
type Assignment struct {
	ID          int64     `json:"id"`
	ClassID     int64     `json:"class_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *Date     `json:"due_date"`
	FileURL     *string   `json:"file_url"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	ClassID     int64   `json:"class_id" binding:"required,min=1"`
	Title       string  `json:"title" binding:"required,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	FileURL     *string `json:"file_url" binding:"omitempty,url,max=2048"`
}

// UpdateAssignmentRequest is a partial update of an assignment.
type UpdateAssignmentRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	FileURL     *string `json:"file_url" binding:"omitempty,url,max=2048"`
}
