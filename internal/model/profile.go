package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application record attached 1:1 to a Supabase auth user.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	SessionID string    `json:"-"`
	Profile   *Profile  `json:"profile"`
}

// IsAdmin reports whether the caller holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// ProfileFilter narrows the admin user listing.
type ProfileFilter struct {
	Role    Role
	Search  string
	Page    int
	PerPage int
}

// CreateProfileRequest is sent by a freshly signed-up user to create their own profile.
type CreateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string `json:"last_name" binding:"required,notblank,max=100"`
}

// UpdateProfileRequest is a partial update of the caller's own profile.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,notblank,max=100"`
}

// CreateUserRequest is the admin payload for provisioning a new account.
// When Password is omitted a random one is generated and returned once.
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=254"`
	FirstName string  `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string  `json:"last_name" binding:"required,notblank,max=100"`
	Role      string  `json:"role" binding:"required,role"`
	Password  *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateRoleRequest changes a user's role (admin only).
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// CreatedUser is returned after admin provisioning.
type CreatedUser struct {
	Profile           *Profile `json:"profile"`
	GeneratedPassword string   `json:"generated_password,omitempty"`
}
