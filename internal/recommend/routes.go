package recommend

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes configure les routes de recommandations
func SetupRoutes(router *gin.RouterGroup, engine *Engine, logger *zap.Logger) {
	handler := NewHandler(engine, logger)

	router.GET("/recommendations", handler.GetRecommendations)
}
