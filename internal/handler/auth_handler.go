package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/middleware"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
)

// AuthHandler exposes the caller's identity and sign-out.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Me godoc
// GET /api/v1/auth/me
// Returns the resolved identity of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": ident})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the session of the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}
