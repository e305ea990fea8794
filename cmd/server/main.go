package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/database"
	"github.com/learnmate/learnmate-backend/internal/handler"
	"github.com/learnmate/learnmate-backend/internal/logger"
	"github.com/learnmate/learnmate-backend/internal/repository"
	"github.com/learnmate/learnmate-backend/internal/router"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/learnmate/learnmate-backend/internal/supabase"
	"github.com/learnmate/learnmate-backend/internal/validator"
	"github.com/rs/zerolog"
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
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting LearnMate Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	metricsRepo := repository.NewMetricsRepository(pool)
	sessionRepo := repository.NewSessionRepository(rdb)
	eventBus := repository.NewEventBus(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, sessionRepo, profileRepo)
	eventService := service.NewEventService(eventBus, classRepo, enrollmentRepo, log)
	profileService := service.NewProfileService(profileRepo)
	adminService := service.NewAdminService(profileRepo, metricsRepo, supabase.NewAdminClient(cfg), log)
	classService := service.NewClassService(classRepo, enrollmentRepo, profileRepo)
	assignmentService := service.NewAssignmentService(classRepo, enrollmentRepo, assignmentRepo, eventService)
	submissionService := service.NewSubmissionService(classRepo, enrollmentRepo, assignmentRepo, submissionRepo, eventService)
	gradeService := service.NewGradeService(classRepo, enrollmentRepo, assignmentRepo, submissionRepo, gradeRepo, eventService)
	attendanceService := service.NewAttendanceService(classRepo, enrollmentRepo, attendanceRepo, eventService)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"database": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Auth:       handler.NewAuthHandler(authService),
		Profile:    handler.NewProfileHandler(profileService),
		Admin:      handler.NewAdminHandler(adminService),
		Class:      handler.NewClassHandler(classService),
		Assignment: handler.NewAssignmentHandler(assignmentService),
		Submission: handler.NewSubmissionHandler(submissionService),
		Grade:      handler.NewGradeHandler(gradeService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		WS:         handler.NewWSHandler(eventService, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stops the rate limiter sweep.
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
