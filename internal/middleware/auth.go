package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	// ContextKeyClaims is the Gin context key for verified token claims.
	ContextKeyClaims = "claims"
	// ContextKeyIdentity is the Gin context key for the resolved caller.
	ContextKeyIdentity = "identity"
)

// RequireToken verifies the bearer token but does not require a profile.
// Used by the endpoint that creates the profile.
func RequireToken(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.ValidateToken(c.Request.Context(), extractToken(c))
		if err != nil {
			abortAuth(c, log, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireIdentity verifies the bearer token and resolves the caller's profile.
func RequireIdentity(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claims, err := authService.ValidateToken(ctx, extractToken(c))
		if err != nil {
			abortAuth(c, log, err)
			return
		}

		ident, err := authService.Resolve(ctx, claims)
		if err != nil {
			abortAuth(c, log, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyIdentity, ident)
		c.Next()
	}
}

// GetClaims retrieves the verified claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetIdentity retrieves the resolved caller from the Gin context.
func GetIdentity(c *gin.Context) *model.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	ident, ok := val.(*model.Identity)
	if !ok {
		return nil
	}
	return ident
}

// extractToken reads the bearer token. ?token= is only honoured on
// WebSocket upgrades, which cannot send headers from browsers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if !websocket.IsWebSocketUpgrade(c.Request) {
		return ""
	}
	return c.Query("token")
}

func abortAuth(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrTokenMissing):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrTokenExpired):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
	case errors.Is(err, service.ErrSessionRevoked):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRevoked)
	case errors.Is(err, service.ErrUnauthenticated):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	case errors.Is(err, service.ErrProfileNotFound):
		response.AbortFail(c, http.StatusNotFound, response.ErrProfileNotFound)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Failed to authenticate request")
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
