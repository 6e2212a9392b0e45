package push

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes configure la route du canal de push
func SetupRoutes(router *gin.Engine, service *Service, corsOrigin string, logger *zap.Logger) {
	handler := NewWebSocketHandler(service, corsOrigin, logger)

	router.GET("/ws/recommendations", handler.HandleWebSocket)
}
