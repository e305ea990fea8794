package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/database"
	"github.com/learnmate/learnmate-backend/internal/logger"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/repository"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/supabase"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: promote-admin <email>")
		os.Exit(2)
	}
	email := strings.TrimSpace(os.Args[1])

	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	metricsRepo := repository.NewMetricsRepository(pool)
	adminService := service.NewAdminService(profileRepo, metricsRepo, supabase.NewAdminClient(cfg), log)

	fmt.Println("=== Promote User To Admin ===")

	// Search is a substring match, so pick the exact email out of the page.
	profiles, _, err := adminService.ListUsers(ctx, service.SystemIdentity(), model.ProfileFilter{
		Search: email, Page: 1, PerPage: 100,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up profile")
	}

	var target *model.Profile
	for i := range profiles {
		if strings.EqualFold(profiles[i].Email, email) {
			target = &profiles[i]
			break
		}
	}
	if target == nil {
		fmt.Printf("Error: no profile with email %s. The user must sign in and create a profile first.\n", email)
		os.Exit(1)
	}
	if target.Role == model.RoleAdmin {
		fmt.Printf("%s is already an admin.\n", email)
		return
	}

	updated, err := adminService.UpdateRole(ctx, service.SystemIdentity(), target.ID,
		model.UpdateRoleRequest{Role: string(model.RoleAdmin)})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update role")
	}

	fmt.Printf("\nSuccess! %s (%s) is now an admin.\n", updated.Email, updated.ID)
}
