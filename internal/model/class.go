package model

import (
	"time"

	"github.com/google/uuid"
)

// Class is a course container owned by one teacher.
type Class struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassFilter restricts a class listing. Nil fields are ignored.
type ClassFilter struct {
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
}

// Enrollment places a student on a class roster.
type Enrollment struct {
	ClassID    int64     `json:"class_id"`
	StudentID  uuid.UUID `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	TeacherID   string  `json:"teacher_id" binding:"required,uuid"`
}

// UpdateClassRequest is a partial update of a class.
type UpdateClassRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	TeacherID   *string `json:"teacher_id" binding:"omitempty,uuid"`
}

// EnrollStudentRequest adds a student to a class roster.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}
