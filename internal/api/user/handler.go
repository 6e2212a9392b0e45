package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/common"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/domain/repositories"
	"github.com/auralis/auralis-backend/internal/utils/response"
	"github.com/auralis/auralis-backend/pkg/validator"
)

// Handler gère les requêtes de profil utilisateur
type Handler struct {
	users     repositories.UserRepository
	validator *validator.Validator
	logger    *zap.Logger
}

// NewHandler crée le handler de profil
func NewHandler(users repositories.UserRepository, v *validator.Validator, logger *zap.Logger) *Handler {
	return &Handler{
		users:     users,
		validator: v,
		logger:    logger,
	}
}

// GetMe handler pour récupérer (ou créer) le profil de l'utilisateur authentifié
// @Summary Obtenir le profil utilisateur
// @Tags users
// @Produce json
// @Success 200 {object} entities.UserProfile
// @Router /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := common.GetExternalUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "identity not established"})
		return
	}

	profile, err := h.users.FindOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load user profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// UpdatePreferences handler pour remplacer les genres préférés
// @Summary Mettre à jour les préférences de genres
// @Tags users
// @Accept json
// @Produce json
// @Param preferences body entities.UpdatePreferencesRequest true "Genres préférés"
// @Success 200 {object} entities.UserProfile
// @Router /me/preferences [put]
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := common.GetExternalUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "identity not established"})
		return
	}

	var req entities.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid preferences payload")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	// S'assurer que le profil existe avant la mise à jour
	if _, err := h.users.FindOrCreate(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.users.UpdatePreferences(c.Request.Context(), userID, req.PreferredGenres, req.DislikedGenres)
	if err != nil {
		h.logger.Error("Failed to update preferences",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}
