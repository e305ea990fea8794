package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxScore is the upper bound of a grade score.
const MaxScore = 100

// Grade is the mark given to a submission.
type Grade struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	Score        float64   `json:"score"`
	Feedback     *string   `json:"feedback"`
	GradedBy     uuid.UUID `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateGradeRequest is the payload for grading a submission.
type CreateGradeRequest struct {
	SubmissionID int64    `json:"submission_id" binding:"required,min=1"`
	Score        *float64 `json:"score" binding:"required,gte=0,lte=100"`
	Feedback     *string  `json:"feedback" binding:"omitempty,max=5000"`
}

// UpdateGradeRequest is a partial update of a grade.
type UpdateGradeRequest struct {
	Score    *float64 `json:"score" binding:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback" binding:"omitempty,max=5000"`
}
