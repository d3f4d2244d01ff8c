package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pathlight/pathlight-backend/internal/clients/redis"
	"github.com/pathlight/pathlight-backend/internal/db"
	"github.com/pathlight/pathlight-backend/internal/handlers"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/middleware"
	"github.com/pathlight/pathlight-backend/internal/observability"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/server"
	"github.com/pathlight/pathlight-backend/internal/services"
	"github.com/pathlight/pathlight-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTL := utils.GetEnvAsInt("TOKEN_TTL", 7*24*3600, log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)
	cookieSecure := strings.EqualFold(utils.GetEnv("COOKIE_SECURE", "false", log), "true")
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pathlight-backend",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	defer postgresService.Close()
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	studentRepo := repos.NewStudentRepo(thePG, log)
	assessmentRepo := repos.NewAssessmentResponseRepo(thePG, log)
	progressRepo := repos.NewStudentProgressRepo(thePG, log)
	moduleRepo := repos.NewModuleProgressRepo(thePG, log)
	pathRepo := repos.NewPathProgressRepo(thePG, log)
	pageDataRepo := repos.NewSessionPageDataRepo(thePG, log)
	userSessionRepo := repos.NewUserSessionRepo(thePG, log)
	learningPathRepo := repos.NewLearningPathRepo(thePG, log)

	// Redis, optional: the session service falls through to Postgres
	var sessionCache redis.SessionCache
	if cache, cErr := redis.NewSessionCache(log); cErr != nil {
		log.Warn("Redis unavailable, session cache disabled", "error", cErr)
	} else {
		sessionCache = cache
		defer sessionCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	avatarService, err := services.NewAvatarService(log)
	if err != nil {
		log.Warn("Avatar service unavailable, registering users without avatars", "error", err)
		avatarService = nil
	}
	catalogService, err := services.NewCatalogService(log)
	if err != nil {
		log.Error("Could not load catalog", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, studentRepo, avatarService, jwtSecretKey, time.Duration(tokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	studentService := services.NewStudentService(thePG, log, studentRepo, userRepo, authService)
	sessionService := services.NewSessionService(thePG, log, pageDataRepo, moduleRepo, pathRepo, assessmentRepo, progressRepo, userSessionRepo, studentRepo, sessionCache)
	webhookService := services.NewWebhookService(log)
	assessmentService := services.NewAssessmentService(thePG, log, sessionService, studentService, assessmentRepo, webhookService)
	learningPathService := services.NewLearningPathService(thePG, log, learningPathRepo, studentRepo, catalogService, webhookService)
	dashboardService := services.NewDashboardService(thePG, log, userRepo, studentRepo, moduleRepo, pathRepo, assessmentRepo, learningPathRepo)
	exportService := services.NewExportService(log, studentRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService, studentService, userService, cookieSecure)
	userHandler := handlers.NewUserHandler(userService)
	studentHandler := handlers.NewStudentHandler(studentService)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService, studentService)
	learningPathHandler := handlers.NewLearningPathHandler(learningPathService, studentService)
	sessionHandler := handlers.NewSessionHandler(sessionService, studentService)
	progressHandler := handlers.NewProgressHandler(sessionService, studentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	exportHandler := handlers.NewExportHandler(exportService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		UserHandler:         userHandler,
		StudentHandler:      studentHandler,
		AssessmentHandler:   assessmentHandler,
		LearningPathHandler: learningPathHandler,
		SessionHandler:      sessionHandler,
		ProgressHandler:     progressHandler,
		DashboardHandler:    dashboardHandler,
		ExportHandler:       exportHandler,
		CatalogHandler:      catalogHandler,
		AllowOrigins:        allowOrigins,
		TracingEnabled:      observability.Enabled(),
	})

	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "port", serverPort)
		if sErr := srv.ListenAndServe(); sErr != nil && sErr != http.ErrServerClosed {
			log.Error("Server failed", "error", sErr)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}
}
