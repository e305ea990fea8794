package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is the recorded presence of a student on a day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AllAttendanceStatuses lists every accepted status value.
var AllAttendanceStatuses = []AttendanceStatus{
	AttendancePresent,
	AttendanceAbsent,
	AttendanceLate,
	AttendanceExcused,
}

// Valid reports whether s is an accepted status.
func (s AttendanceStatus) Valid() bool {
	for _, v := range AllAttendanceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Attendance is one student's status in one class on one day.
type Attendance struct {
	ID        int64            `json:"id"`
	ClassID   int64            `json:"class_id"`
	StudentID uuid.UUID        `json:"student_id"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
	MarkedBy  uuid.UUID        `json:"marked_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AttendanceFilter restricts an attendance listing. Zero fields are ignored.
type AttendanceFilter struct {
	ClassID   int64
	StudentID *uuid.UUID
	Date      *Date
}

// MarkAttendanceRequest records attendance for one student.
type MarkAttendanceRequest struct {
	ClassID   int64  `json:"class_id" binding:"required,min=1"`
	StudentID string `json:"student_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Status    string `json:"status" binding:"required,attendance_status"`
}

// BulkAttendanceRecord is one entry of a bulk marking request.
type BulkAttendanceRecord struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Status    string `json:"status" binding:"required,attendance_status"`
}

// BulkAttendanceRequest marks a whole class for one day.
type BulkAttendanceRequest struct {
	ClassID int64                  `json:"class_id" binding:"required,min=1"`
	Date    string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Records []BulkAttendanceRecord `json:"records" binding:"required,min=1,max=500,dive"`
}

// BulkAttendanceResult reports what a bulk marking created and what it skipped.
type BulkAttendanceResult struct {
	Created []Attendance `json:"created"`
	Skipped []uuid.UUID  `json:"skipped"`
}

// UpdateAttendanceRequest changes the status of an existing record.
type UpdateAttendanceRequest struct {
	Status string `json:"status" binding:"required,attendance_status"`
}

// AttendanceSummary aggregates one class-day.
type AttendanceSummary struct {
	ClassID       int64                    `json:"class_id"`
	Date          Date                     `json:"date"`
	TotalStudents int                      `json:"total_students"`
	Counts        map[AttendanceStatus]int `json:"counts"`
	Unmarked      int                      `json:"unmarked"`
	// Percentage counts present and late students against the roster.
	Percentage float64 `json:"attendance_percentage"`
}
