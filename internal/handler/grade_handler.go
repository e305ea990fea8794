package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/validator"
)

// GradeHandler handles grading of submissions.
type GradeHandler struct {
	gradeService *service.GradeService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradeService *service.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

// CreateGrade godoc
// POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req model.CreateGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.Create(c.Request.Context(), ident, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"grade": grade})
}

// ListMyGrades godoc
// GET /api/v1/grades/me
func (h *GradeHandler) ListMyGrades(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	grades, err := h.gradeService.ListMine(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// ListByAssignment godoc
// GET /api/v1/assignments/:id/grades
func (h *GradeHandler) ListByAssignment(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	grades, err := h.gradeService.ListByAssignment(c.Request.Context(), ident, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// GetBySubmission godoc
// GET /api/v1/submissions/:id/grade
func (h *GradeHandler) GetBySubmission(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	grade, err := h.gradeService.GetBySubmission(c.Request.Context(), ident, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// GetGrade godoc
// GET /api/v1/grades/:id
func (h *GradeHandler) GetGrade(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	grade, err := h.gradeService.Get(c.Request.Context(), ident, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// UpdateGrade godoc
// PUT /api/v1/grades/:id
// Only the teacher who posted the grade (or an admin) may change it.
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), ident, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// DeleteGrade godoc
// DELETE /api/v1/grades/:id
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), ident, id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Grade deleted"})
}
