package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/rs/zerolog"
)

const (
	generatedPasswordLength = 16
	passwordAlphabet        = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%"
)

// AdminService handles user administration and platform metrics.
type AdminService struct {
	profiles    ProfileStore
	metrics     MetricsStore
	provisioner UserProvisioner
	log         zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(profiles ProfileStore, metrics MetricsStore, provisioner UserProvisioner, log zerolog.Logger) *AdminService {
	return &AdminService{
		profiles:    profiles,
		metrics:     metrics,
		provisioner: provisioner,
		log:         log.With().Str("component", "admin").Logger(),
	}
}

// ListUsers returns a paginated, filtered list of profiles.
func (s *AdminService) ListUsers(ctx context.Context, ident *model.Identity, f model.ProfileFilter) ([]model.Profile, int, error) {
	if err := authorize(ident, authz.ResourceUser, authz.ActionRead, authz.Relation{}); err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	f.Search = strings.TrimSpace(f.Search)

	return s.profiles.List(ctx, f)
}

// GetUser returns one profile.
func (s *AdminService) GetUser(ctx context.Context, ident *model.Identity, id uuid.UUID) (*model.Profile, error) {
	if err := authorize(ident, authz.ResourceUser, authz.ActionRead, authz.Relation{}); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, id)
}

// SystemIdentity is the caller used by operator tooling that already holds
// database credentials, such as the create-admin command.
func SystemIdentity() *model.Identity {
	return &model.Identity{Role: model.RoleAdmin, Email: "system"}
}

// CreateUser provisions an account in the auth service and its profile.
// If no password is given one is generated and returned once.
func (s *AdminService) CreateUser(ctx context.Context, ident *model.Identity, req model.CreateUserRequest) (*model.CreatedUser, error) {
	if err := authorize(ident, authz.ResourceUser, authz.ActionCreate, authz.Relation{}); err != nil {
		return nil, err
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, NewValidationError("role", "must be one of admin, teacher, student")
	}

	out := &model.CreatedUser{}
	password := ""
	if req.Password != nil {
		password = *req.Password
	} else {
		generated, err := generatePassword(generatedPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
		password = generated
		out.GeneratedPassword = generated
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	userID, err := s.provisioner.CreateUser(ctx, email, password, map[string]interface{}{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"role":       string(role),
	})
	if err != nil {
		return nil, fmt.Errorf("create auth user: %w", err)
	}

	p := &model.Profile{
		ID:        userID,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if delErr := s.provisioner.DeleteUser(ctx, userID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", userID.String()).Msg("Failed to roll back auth user")
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("role", string(role)).
		Str("created_by", ident.UserID.String()).
		Msg("User created")

	out.Profile = p
	return out, nil
}

// UpdateRole changes a user's role. An admin cannot demote themselves.
func (s *AdminService) UpdateRole(ctx context.Context, ident *model.Identity, id uuid.UUID, req model.UpdateRoleRequest) (*model.Profile, error) {
	if err := authorize(ident, authz.ResourceUser, authz.ActionUpdate, authz.Relation{}); err != nil {
		return nil, err
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, NewValidationError("role", "must be one of admin, teacher, student")
	}
	if id == ident.UserID && role != model.RoleAdmin {
		return nil, NewValidationError("role", "you cannot remove your own admin role")
	}

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Role = role
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().
		Str("user_id", id.String()).
		Str("role", string(role)).
		Str("changed_by", ident.UserID.String()).
		Msg("User role changed")
	return p, nil
}

// Metrics returns the platform-wide counters.
func (s *AdminService) Metrics(ctx context.Context, ident *model.Identity) (*model.Metrics, error) {
	if err := authorize(ident, authz.ResourceMetrics, authz.ActionRead, authz.Relation{}); err != nil {
		return nil, err
	}
	return s.metrics.Counts(ctx)
}

func generatePassword(n int) (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b), nil
}
