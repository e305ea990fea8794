package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/learnmate/learnmate-backend/internal/handler"
	"github.com/learnmate/learnmate-backend/internal/logger"
	"github.com/learnmate/learnmate-backend/internal/middleware"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Profile    *handler.ProfileHandler
	Admin      *handler.AdminHandler
	Class      *handler.ClassHandler
	Assignment *handler.AssignmentHandler
	Submission *handler.SubmissionHandler
	Grade      *handler.GradeHandler
	Attendance *handler.AttendanceHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the lifetime of background middleware state.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// Request ID first so the request logger and every envelope can see it.
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log, response.ContextKeyRequestID))
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/", handlers.Health.Health)
	router.GET("/health", handlers.Health.Health)

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Token-only routes (no profile required yet) ─────────────────
	tokenOnly := api.Group("")
	tokenOnly.Use(middleware.RequireToken(authService, log), limiter.Middleware())
	{
		tokenOnly.POST("/profiles", handlers.Profile.CreateProfile)
		tokenOnly.POST("/auth/logout", handlers.Auth.Logout)
	}

	// ─── 2. Authenticated routes (token + resolved profile) ─────────────
	authed := api.Group("")
	authed.Use(middleware.RequireIdentity(authService, log), limiter.Middleware())
	{
		authed.GET("/auth/me", handlers.Auth.Me)

		authed.GET("/profiles/me", handlers.Profile.GetMyProfile)
		authed.PUT("/profiles/me", handlers.Profile.UpdateMyProfile)

		// Classes and rosters
		authed.GET("/classes", handlers.Class.ListClasses)
		authed.POST("/classes", handlers.Class.CreateClass)
		authed.GET("/classes/:id", handlers.Class.GetClass)
		authed.PUT("/classes/:id", handlers.Class.UpdateClass)
		authed.DELETE("/classes/:id", handlers.Class.DeleteClass)
		authed.GET("/classes/:id/students", handlers.Class.ListStudents)
		authed.POST("/classes/:id/students", handlers.Class.EnrollStudent)
		authed.DELETE("/classes/:id/students/:student_id", handlers.Class.UnenrollStudent)
		authed.GET("/classes/:id/assignments", handlers.Assignment.ListByClass)
		authed.GET("/classes/:id/attendance", handlers.Attendance.ListByClass)
		authed.GET("/classes/:id/attendance/summary", handlers.Attendance.Summary)

		// Assignments
		authed.POST("/assignments", handlers.Assignment.CreateAssignment)
		authed.GET("/assignments/:id", handlers.Assignment.GetAssignment)
		authed.PUT("/assignments/:id", handlers.Assignment.UpdateAssignment)
		authed.DELETE("/assignments/:id", handlers.Assignment.DeleteAssignment)
		authed.GET("/assignments/:id/submissions", handlers.Submission.ListByAssignment)
		authed.GET("/assignments/:id/grades", handlers.Grade.ListByAssignment)

		// Submissions
		authed.POST("/submissions", handlers.Submission.CreateSubmission)
		authed.GET("/submissions/me",
			middleware.RequireRole(model.RoleStudent),
			handlers.Submission.ListMySubmissions,
		)
		authed.GET("/submissions/:id", handlers.Submission.GetSubmission)
		authed.PUT("/submissions/:id", handlers.Submission.UpdateSubmission)
		authed.DELETE("/submissions/:id", handlers.Submission.DeleteSubmission)
		authed.GET("/submissions/:id/grade", handlers.Grade.GetBySubmission)

		// Grades
		authed.POST("/grades", handlers.Grade.CreateGrade)
		authed.GET("/grades/me",
			middleware.RequireRole(model.RoleStudent),
			handlers.Grade.ListMyGrades,
		)
		authed.GET("/grades/:id", handlers.Grade.GetGrade)
		authed.PUT("/grades/:id", handlers.Grade.UpdateGrade)
		authed.DELETE("/grades/:id", handlers.Grade.DeleteGrade)

		// Attendance
		authed.POST("/attendance", handlers.Attendance.MarkAttendance)
		authed.POST("/attendance/bulk", handlers.Attendance.MarkBulk)
		authed.GET("/attendance/:id", handlers.Attendance.GetAttendance)
		authed.PUT("/attendance/:id", handlers.Attendance.UpdateAttendance)
		authed.DELETE("/attendance/:id", handlers.Attendance.DeleteAttendance)
		authed.GET("/students/:id/attendance", handlers.Attendance.ListByStudent)
	}

	// ─── 3. Admin Group (identity + admin role) ────────────────────────
	adminAPI := api.Group("/admin")
	adminAPI.Use(
		middleware.RequireIdentity(authService, log),
		limiter.Middleware(),
		middleware.RequireRole(model.RoleAdmin),
	)
	{
		adminAPI.GET("/users", handlers.Admin.ListUsers)
		adminAPI.POST("/users", handlers.Admin.CreateUser)
		adminAPI.GET("/users/:id", handlers.Admin.GetUser)
		adminAPI.PUT("/users/:id/role", handlers.Admin.UpdateUserRole)
		adminAPI.GET("/metrics", handlers.Admin.Metrics)

		// System Monitoring
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
		adminAPI.GET("/system/metrics/snapshot", handlers.System.SystemMetrics)
	}

	// ─── 4. WebSocket Group (token may arrive as ?token=) ──────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireIdentity(authService, log))
	{
		ws.GET("/classes/:id/stream", handlers.WS.ClassStream)
	}

	return router
}
