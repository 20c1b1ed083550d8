package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/calebdunn/studypath-backend/internal/clients/redis"
	"github.com/calebdunn/studypath-backend/internal/db"
	"github.com/calebdunn/studypath-backend/internal/handlers"
	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/middleware"
	"github.com/calebdunn/studypath-backend/internal/observability"
	"github.com/calebdunn/studypath-backend/internal/repos"
	"github.com/calebdunn/studypath-backend/internal/server"
	"github.com/calebdunn/studypath-backend/internal/services"
	"github.com/calebdunn/studypath-backend/internal/sse"
	"github.com/calebdunn/studypath-backend/internal/utils"
)

const serviceName = "studypath-backend"

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
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	port := utils.GetEnv("PORT", "8080", log)

	// Tracing
	shutdownTracing := observability.Init(context.Background(), log, observability.Config{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	gdb := dbService.DB()

	// Redis (optional, explanation cache only)
	rdb, err := redisclient.New(log)
	if err != nil {
		log.Warn("Redis init failed, continuing without cache", "error", err)
		rdb = nil
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	planRepo := repos.NewPlanRepo(gdb, log)
	progressRepo := repos.NewProgressRepo(gdb, log)
	commentRepo := repos.NewCommentRepo(gdb, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(
		gdb, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(gdb, log, userRepo)
	planService := services.NewPlanService(gdb, log, planRepo, sseHub)
	generationService := services.NewGenerationService(gdb, log, planRepo, openaiClient, sseHub)
	progressService := services.NewProgressService(gdb, log, progressRepo, sseHub)
	explanationService := services.NewExplanationService(gdb, log, openaiClient, rdb)
	exportService := services.NewExportService(log)
	commentService := services.NewCommentService(gdb, log, commentRepo)
	chatService := services.NewChatService(gdb, log, openaiClient, planService, generationService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	planHandler := handlers.NewPlanHandler(planService, generationService)
	roadmapHandler := handlers.NewRoadmapHandler(planService, progressService)
	exportHandler := handlers.NewExportHandler(planService, exportService)
	chatHandler := handlers.NewChatHandler(chatService)
	explanationHandler := handlers.NewExplanationHandler(explanationService)
	commentHandler := handlers.NewCommentHandler(planService, commentService)
	sseHandler := handlers.NewSSEHandler(sseHub, planService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:                log,
		ServiceName:        serviceName,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		PlanHandler:        planHandler,
		RoadmapHandler:     roadmapHandler,
		ExportHandler:      exportHandler,
		ChatHandler:        chatHandler,
		ExplanationHandler: explanationHandler,
		CommentHandler:     commentHandler,
		SSEHandler:         sseHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
