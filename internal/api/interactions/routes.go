package interactions

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configure la route d'enregistrement des interactions
func SetupRoutes(router *gin.RouterGroup, handler *Handler) {
	router.POST("/interactions", handler.RecordInteraction)
}
