package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/learnmate/learnmate-backend/internal/authz"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// ProfileService manages a caller's own profile.
type ProfileService struct {
	profiles ProfileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Create makes the profile for a freshly signed-up account. Self-created
// profiles always start as students; only an admin can change the role.
func (s *ProfileService) Create(ctx context.Context, claims *Claims, req model.CreateProfileRequest) (*model.Profile, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}

	if !authz.Allow(model.RoleStudent, authz.ResourceProfile, authz.ActionCreate, authz.Relation{Self: true}) {
		return nil, ErrForbidden
	}

	_, err = s.profiles.GetByID(ctx, userID)
	if err == nil {
		return nil, ErrProfileExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p := &model.Profile{
		ID:        userID,
		Email:     claims.Email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      model.RoleStudent,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// GetMine returns the caller's profile.
func (s *ProfileService) GetMine(ctx context.Context, ident *model.Identity) (*model.Profile, error) {
	if err := authorize(ident, authz.ResourceProfile, authz.ActionRead, authz.Relation{Self: true}); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, ident.UserID)
}

// UpdateMine applies a partial update to the caller's profile.
func (s *ProfileService) UpdateMine(ctx context.Context, ident *model.Identity, req model.UpdateProfileRequest) (*model.Profile, error) {
	if err := authorize(ident, authz.ResourceProfile, authz.ActionUpdate, authz.Relation{Self: true}); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if req.FirstName != nil {
		p.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		p.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}
