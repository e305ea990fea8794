package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/validator"
)

// AdminHandler handles user administration and platform metrics.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers godoc
// GET /api/v1/admin/users?role=&search=&page=&per_page=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	f := model.ProfileFilter{Search: c.Query("search")}
	if raw := c.Query("role"); raw != "" {
		role := model.Role(raw)
		if !role.Valid() {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery,
				map[string]string{"role": "role must be one of admin, teacher, student"})
			return
		}
		f.Role = role
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	users, total, err := h.adminService.ListUsers(c.Request.Context(), ident, f)
	if err != nil {
		respondError(c, err)
		return
	}

	// The service clamps paging; mirror it for the envelope.
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users},
		response.NewPagination(f.Page, f.PerPage, total))
}

// GetUser godoc
// GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), ident, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// CreateUser godoc
// POST /api/v1/admin/users
// Provisions an auth account and its profile. A password is generated when omitted.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.adminService.CreateUser(c.Request.Context(), ident, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// UpdateUserRole godoc
// PUT /api/v1/admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.adminService.UpdateRole(c.Request.Context(), ident, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Metrics godoc
// GET /api/v1/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	metrics, err := h.adminService.Metrics(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"metrics": metrics})
}
