package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/database"
	"github.com/learnmate/learnmate-backend/internal/logger"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/repository"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/supabase"
	"golang.org/x/term"
)

func main() {
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

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	firstName := prompt(reader, "Enter First Name: ")
	lastName := prompt(reader, "Enter Last Name: ")
	if firstName == "" || lastName == "" {
		fmt.Println("Error: First and last name are required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password (empty to generate): ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	req := model.CreateUserRequest{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      string(model.RoleAdmin),
	}
	if password := string(bytePassword); password != "" {
		if len(password) < 8 {
			fmt.Println("Error: Password must be at least 8 characters")
			return
		}
		req.Password = &password
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	created, err := adminService.CreateUser(ctx, service.SystemIdentity(), req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin %s %s (%s) created with ID: %s\n",
		created.Profile.FirstName, created.Profile.LastName, created.Profile.Email, created.Profile.ID)
	if created.GeneratedPassword != "" {
		fmt.Printf("Generated password (shown once): %s\n", created.GeneratedPassword)
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
