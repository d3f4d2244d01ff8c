package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pathlight/pathlight-backend/internal/handlers"
	"github.com/pathlight/pathlight-backend/internal/middleware"
	"github.com/pathlight/pathlight-backend/internal/types"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	StudentHandler      *handlers.StudentHandler
	AssessmentHandler   *handlers.AssessmentHandler
	LearningPathHandler *handlers.LearningPathHandler
	SessionHandler      *handlers.SessionHandler
	ProgressHandler     *handlers.ProgressHandler
	DashboardHandler    *handlers.DashboardHandler
	ExportHandler       *handlers.ExportHandler
	CatalogHandler      *handlers.CatalogHandler
	AllowOrigins        []string
	TracingEnabled      bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("pathlight-backend"))
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		// recommendation pipeline callback, keyed by unique_id in the body
		api.POST("/learning-paths/callback", cfg.LearningPathHandler.SaveRecommendation)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.Me)
	protected.PATCH("/user/profile", cfg.UserHandler.UpdateProfile)
	protected.DELETE("/user", cfg.UserHandler.Deactivate)

	// Catalog
	protected.GET("/catalog/careers", cfg.CatalogHandler.Careers)
	protected.GET("/catalog/modules", cfg.CatalogHandler.Modules)

	// Dashboard, shaped by role inside the handler
	protected.GET("/dashboard", cfg.DashboardHandler.Get)

	// Student self-service
	studentOnly := protected.Group("/")
	studentOnly.Use(cfg.AuthMiddleware.RequireRoles(types.RoleStudent))
	{
		studentOnly.GET("/student", cfg.StudentHandler.GetMine)
		studentOnly.POST("/student/onboarding/complete", cfg.StudentHandler.CompleteOnboarding)

		studentOnly.POST("/assessment/start", cfg.AssessmentHandler.Start)
		studentOnly.POST("/assessment/answers", cfg.AssessmentHandler.SubmitAnswers)
		studentOnly.POST("/assessment/finalize", cfg.AssessmentHandler.Finalize)
		studentOnly.GET("/assessment", cfg.AssessmentHandler.GetMine)

		studentOnly.GET("/learning-paths", cfg.LearningPathHandler.GetMine)
		studentOnly.POST("/learning-paths/request", cfg.LearningPathHandler.RequestRecommendation)

		studentOnly.POST("/session/page-data", cfg.SessionHandler.SavePageData)
		studentOnly.GET("/session/page-data/:page", cfg.SessionHandler.LoadPageData)
		studentOnly.POST("/session/navigation", cfg.SessionHandler.UpdateNavigation)
		studentOnly.POST("/session", cfg.SessionHandler.CreateSession)
		studentOnly.GET("/session", cfg.SessionHandler.GetActiveSession)

		studentOnly.POST("/progress/modules", cfg.ProgressHandler.SaveModuleProgress)
		studentOnly.GET("/progress/modules", cfg.ProgressHandler.LoadModuleProgress)
		studentOnly.POST("/progress/paths", cfg.ProgressHandler.SavePathProgress)
		studentOnly.GET("/progress/paths", cfg.ProgressHandler.LoadPathProgress)
		studentOnly.POST("/progress/career", cfg.ProgressHandler.SaveCareerProgress)
		studentOnly.GET("/progress/career", cfg.ProgressHandler.LoadCareerProgress)
		studentOnly.POST("/progress/student", cfg.ProgressHandler.SaveStudentProgress)
		studentOnly.POST("/progress/migrate", cfg.ProgressHandler.MigrateExistingData)
	}

	// Teacher / organization views
	staff := protected.Group("/")
	staff.Use(cfg.AuthMiddleware.RequireRoles(
		types.RoleTeacher, types.RoleOrganization, types.RoleAdmin, types.RolePlatformSuperAdmin,
	))
	{
		staff.GET("/students", cfg.StudentHandler.List)
		staff.GET("/students/:uniqueId", cfg.StudentHandler.GetByUniqueID)
		staff.GET("/students/:uniqueId/assessments", cfg.AssessmentHandler.GetForStudent)
		staff.GET("/export/progress.csv", cfg.ExportHandler.ProgressCSV)
		staff.GET("/export/roster.csv", cfg.ExportHandler.RosterCSV)
	}

	return router
}
