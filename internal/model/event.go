package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a class activity pushed to live subscribers.
type EventType string

const (
	EventAssignmentCreated EventType = "assignment.created"
	EventAssignmentUpdated EventType = "assignment.updated"
	EventAssignmentDeleted EventType = "assignment.deleted"
	EventSubmissionCreated EventType = "submission.created"
	EventGradePosted       EventType = "grade.posted"
	EventAttendanceMarked  EventType = "attendance.marked"
)

// ClassEvent is the payload published on a class's event channel.
type ClassEvent struct {
	Type       EventType   `json:"type"`
	ClassID    int64       `json:"class_id"`
	ResourceID int64       `json:"resource_id"`
	ActorID    uuid.UUID   `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}
