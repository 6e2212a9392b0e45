package user

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/domain/repositories"
	"github.com/auralis/auralis-backend/pkg/validator"
)

// SetupRoutes configure les routes de profil
func SetupRoutes(router *gin.RouterGroup, users repositories.UserRepository, v *validator.Validator, logger *zap.Logger) {
	handler := NewHandler(users, v, logger)

	router.GET("/me", handler.GetMe)
	router.PUT("/me/preferences", handler.UpdatePreferences)
}
