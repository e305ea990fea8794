package model

// Metrics are the platform-wide counters shown on the admin dashboard.
type Metrics struct {
	TotalUsers          int          `json:"total_users"`
	UsersByRole         map[Role]int `json:"users_by_role"`
	TotalClasses        int          `json:"total_classes"`
	StudentsEnrolled    int          `json:"students_enrolled"`
	AssignmentsCreated  int          `json:"assignments_created"`
	SubmissionsReceived int          `json:"submissions_received"`
	GradesEntered       int          `json:"grades_entered"`
	AttendanceRecords   int          `json:"attendance_records"`
}
