package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lockout_web/internal/api/handlers"
	"lockout_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	roomHandler := handlers.NewRoomHandler(services.Room)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager)

	api := r.Group("/api")

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no such route",
		})
	})

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	rooms := api.Group("/rooms")
	{
		rooms.POST("", roomHandler.CreateRoom)
		rooms.GET("/:code", roomHandler.GetRoom)
		rooms.POST("/:code/start", roomHandler.StartRoom)
		rooms.POST("/:code/stop", roomHandler.StopRoom)
	}

	// Realtime channel; all mutations stay on the routes above.
	api.GET("/ws", wsHandler.HandleWebSocket)
}
