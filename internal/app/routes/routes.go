package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolchat/internal/app/controllers"
	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/middleware"
	"github.com/yigit/schoolchat/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	wsHandler *websocket.Handler,
	realtimeController *controllers.RealtimeController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// The websocket handshake authenticates itself, browsers cannot send
	// an Authorization header there
	v1.GET("/ws", wsHandler.HandleConnection)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	realtime := authenticated.Group("/realtime")
	realtime.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleTeacher))
	{
		realtime.GET("/stats", realtimeController.GetStats)
	}
}
