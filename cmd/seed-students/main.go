package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/database"
	"github.com/learnmate/learnmate-backend/internal/logger"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/repository"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/supabase"
)

const (
	seedDomain   = "demo.learnmate.test"
	seedPassword = "learnmate-demo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	profileRepo := repository.NewProfileRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	metricsRepo := repository.NewMetricsRepository(pool)

	adminService := service.NewAdminService(profileRepo, metricsRepo, supabase.NewAdminClient(cfg), log)
	classService := service.NewClassService(classRepo, enrollmentRepo, profileRepo)
	system := service.SystemIdentity()

	fmt.Println("=== Seeding Demo Class ===")

	password := seedPassword
	teacher, err := adminService.CreateUser(ctx, system, model.CreateUserRequest{
		Email:     "teacher@" + seedDomain,
		FirstName: "Dewi",
		LastName:  "Lestari",
		Role:      string(model.RoleTeacher),
		Password:  &password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo teacher")
	}
	fmt.Printf("Created teacher %s\n", teacher.Profile.Email)

	desc := "Seeded demo class"
	class, err := classService.Create(ctx, system, model.CreateClassRequest{
		Name:        "Demo Biology",
		Description: &desc,
		TeacherID:   teacher.Profile.ID.String(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo class")
	}
	fmt.Printf("Created class with ID: %d\n", class.ID)

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Lukman Hakim", "Maya Septiana", "Nanda Pratama",
		"Oki Setiana", "Putri Dian", "Qori Maharani", "Rafi Ahmad", "Siska Saraswati",
	}

	successCount := 0
	for i, name := range names {
		first, last, _ := strings.Cut(name, " ")
		student, err := adminService.CreateUser(ctx, system, model.CreateUserRequest{
			Email:     fmt.Sprintf("student%02d@%s", i+1, seedDomain),
			FirstName: first,
			LastName:  last,
			Role:      string(model.RoleStudent),
			Password:  &password,
		})
		if err != nil {
			fmt.Printf("Error creating student %s: %v\n", name, err)
			continue
		}

		if _, err := classService.Enroll(ctx, system, class.ID, model.EnrollStudentRequest{
			StudentID: student.Profile.ID.String(),
		}); err != nil {
			fmt.Printf("Error enrolling student %s: %v\n", name, err)
			continue
		}

		successCount++
		if successCount%5 == 0 {
			fmt.Printf("Enrolled %d students...\n", successCount)
		}
	}

	fmt.Printf("\nSeed completed! Enrolled %d/%d students. Password for every account: %s\n",
		successCount, len(names), seedPassword)
}
