package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// Claims is the payload of a Supabase access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	// Role is the Postgres role Supabase assigns ("authenticated"), not the
	// application role. The application role lives on the profile.
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// RevocationID is the identifier logout revokes: the Supabase session when
// present, otherwise the token ID.
func (c *Claims) RevocationID() string {
	if c.SessionID != "" {
		return c.SessionID
	}
	return c.ID
}

// AuthService verifies access tokens and resolves them to an identity.
type AuthService struct {
	cfg      *config.Config
	sessions SessionStore
	profiles ProfileStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, sessions SessionStore, profiles ProfileStore) *AuthService {
	return &AuthService{cfg: cfg, sessions: sessions, profiles: profiles}
}

// ValidateToken parses and verifies a bearer token: signature, expiry,
// audience, subject shape and revocation.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if s.cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.JWTAudience))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SupabaseJWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}

	if s.sessions != nil && claims.RevocationID() != "" {
		revoked, err := s.sessions.IsRevoked(ctx, claims.RevocationID())
		if err != nil {
			return nil, fmt.Errorf("check session: %w", err)
		}
		if revoked {
			return nil, ErrSessionRevoked
		}
	}

	return claims, nil
}

// Resolve maps verified claims to the caller's identity. A valid token with
// no profile yet yields ErrProfileNotFound.
func (s *AuthService) Resolve(ctx context.Context, claims *Claims) (*model.Identity, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	email := profile.Email
	if email == "" {
		email = claims.Email
	}

	return &model.Identity{
		UserID:    userID,
		Email:     email,
		Role:      profile.Role,
		SessionID: claims.RevocationID(),
		Profile:   profile,
	}, nil
}

// Logout revokes the token's session for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.sessions == nil || claims.RevocationID() == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.RevocationID(), ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
