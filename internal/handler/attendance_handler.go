package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/validator"
)

// AttendanceHandler handles attendance marking and reporting.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// MarkAttendance godoc
// POST /api/v1/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req model.MarkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.Mark(c.Request.Context(), ident, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attendance": record})
}

// MarkBulk godoc
// POST /api/v1/attendance/bulk
// Students already marked for the date are skipped and listed in the result.
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req model.BulkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attendanceService.MarkBulk(c.Request.Context(), ident, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListByClass godoc
// GET /api/v1/classes/:id/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) ListByClass(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	records, err := h.attendanceService.ListByClass(c.Request.Context(), ident, classID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// Summary godoc
// GET /api/v1/classes/:id/attendance/summary?date=YYYY-MM-DD
// The date defaults to today (UTC).
func (h *AttendanceHandler) Summary(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	if date == nil {
		today := model.Today()
		date = &today
	}

	summary, err := h.attendanceService.Summary(c.Request.Context(), ident, classID, *date)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// ListByStudent godoc
// GET /api/v1/students/:id/attendance
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	studentID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	records, err := h.attendanceService.ListByStudent(c.Request.Context(), ident, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// GetAttendance godoc
// GET /api/v1/attendance/:id
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	record, err := h.attendanceService.Get(c.Request.Context(), ident, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// UpdateAttendance godoc
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.Update(c.Request.Context(), ident, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// DeleteAttendance godoc
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(c.Request.Context(), ident, id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Attendance record deleted"})
}
