package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/calebdunn/studypath-backend/internal/handlers"
	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/middleware"
)

type RouterConfig struct {
	Log                *logger.Logger
	ServiceName        string
	AuthMiddleware     *middleware.AuthMiddleware
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	PlanHandler        *handlers.PlanHandler
	RoadmapHandler     *handlers.RoadmapHandler
	ExportHandler      *handlers.ExportHandler
	ChatHandler        *handlers.ChatHandler
	ExplanationHandler *handlers.ExplanationHandler
	CommentHandler     *handlers.CommentHandler
	SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)

	api := protected.Group("/api")
	{
		api.POST("/plans/generate", cfg.PlanHandler.Generate)
		api.GET("/plans", cfg.PlanHandler.List)
		api.GET("/plans/:id", cfg.PlanHandler.Get)
		api.DELETE("/plans/:id", cfg.PlanHandler.Delete)

		api.GET("/plans/:id/roadmap", cfg.RoadmapHandler.Get)
		api.POST("/plans/:id/progress/toggle", cfg.RoadmapHandler.Toggle)
		api.POST("/plans/:id/progress/reset", cfg.RoadmapHandler.Reset)

		api.GET("/plans/:id/export/json", cfg.ExportHandler.JSON)
		api.GET("/plans/:id/export/markdown", cfg.ExportHandler.Markdown)

		api.GET("/plans/:id/comments/:nodeKey", cfg.CommentHandler.List)
		api.POST("/plans/:id/comments/:nodeKey", cfg.CommentHandler.Add)
		api.DELETE("/plans/:id/comments/:nodeKey/:commentId", cfg.CommentHandler.Delete)

		api.POST("/chat", cfg.ChatHandler.Respond)
		api.POST("/explain", cfg.ExplanationHandler.Explain)
	}

	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)

	return router
}

func allowedOrigins() []string {
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); raw != "" {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
