package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCreateAlwaysStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	claims := validClaims(uuid.NewString(), time.Now().Add(time.Hour))
	claims.Email = "new@example.com"

	p, err := f.profiles.Create(ctx, &claims, model.CreateProfileRequest{FirstName: " Nia ", LastName: "Bello"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, p.Role)
	assert.Equal(t, "Nia", p.FirstName)
	assert.Equal(t, "new@example.com", p.Email)

	_, err = f.profiles.Create(ctx, &claims, model.CreateProfileRequest{FirstName: "Nia", LastName: "Bello"})
	assert.ErrorIs(t, err, service.ErrProfileExists)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestProfileUpdateMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.user(t, model.RoleStudent, "sam")

	p, err := f.profiles.UpdateMine(ctx, student, model.UpdateProfileRequest{LastName: strPtr("Okafor")})
	require.NoError(t, err)
	assert.Equal(t, "sam", p.FirstName)
	assert.Equal(t, "Okafor", p.LastName)
	assert.Equal(t, model.RoleStudent, p.Role)

	got, err := f.profiles.GetMine(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, "Okafor", got.LastName)
}
