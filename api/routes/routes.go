package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/godshand/gods-hand-backend/internal/config"
	"github.com/godshand/gods-hand-backend/internal/handlers"
	"github.com/godshand/gods-hand-backend/internal/middleware"
)

// HandlerDependencies carries the wired handlers into the router
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	EventHandler   *handlers.EventHandler
	LotteryHandler *handlers.LotteryHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Read-only event surface consumed by the public UI
		public.GET("/events", deps.EventHandler.GetAllEvents)
		public.GET("/events/:id", deps.EventHandler.GetEventByID)
		public.GET("/events/:id/lottery", deps.LotteryHandler.GetLotteryStatus)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/events", deps.EventHandler.CreateEvent)
		protected.POST("/events/:id/lottery/execute", deps.LotteryHandler.ExecuteLottery)
		protected.POST("/lottery/run-check", deps.LotteryHandler.RunCheck)
	}

	return router
}
