package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/validator"
)

// SubmissionHandler handles student submissions.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CreateSubmission godoc
// POST /api/v1/submissions
// The caller must be enrolled in the assignment's class; otherwise 409 NOT_ENROLLED.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req model.CreateSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.submissionService.Create(c.Request.Context(), ident, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"submission": submission})
}

// ListMySubmissions godoc
// GET /api/v1/submissions/me
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListMine(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

// ListByAssignment godoc
// GET /api/v1/assignments/:id/submissions
func (h *SubmissionHandler) ListByAssignment(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListByAssignment(c.Request.Context(), ident, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

// GetSubmission godoc
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), ident, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": submission})
}

// UpdateSubmission godoc
// PUT /api/v1/submissions/:id
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.submissionService.Update(c.Request.Context(), ident, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": submission})
}

// DeleteSubmission godoc
// DELETE /api/v1/submissions/:id
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), ident, id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Submission deleted"})
}
