package routes

import (
	"gocast_backend/internal/auth"
	"gocast_backend/internal/handlers"
	"gocast_backend/internal/logger"
	"gocast_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api and the file routes at the root.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, requireAuth gin.HandlerFunc) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	appHandlers.FileHandler.RegisterRoutes(ginRouter)

	api := ginRouter.Group("/api")
	protected := api.Group("", requireAuth, middleware.RoleMiddleware(auth.RoleAdmin))
	{
		appHandlers.AuthHandler.RegisterRoutes(api, protected)
		appHandlers.TalentHandler.RegisterRoutes(api, protected)
		appHandlers.UploadHandler.RegisterRoutes(protected)
	}

	logger.Info("HTTP routes registered", "count", len(ginRouter.Routes()))
}
