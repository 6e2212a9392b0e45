package recommend

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/common"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/utils/response"
)

// Handler gère les requêtes HTTP pour les recommandations
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler crée un nouveau handler de recommandations
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// GetRecommendations handler pour récupérer les recommandations
// @Summary Obtenir des recommandations personnalisées
// @Description Exécute le pipeline pour l'utilisateur authentifié et le contexte fourni
// @Tags recommendations
// @Produce json
// @Param mood query string false "Humeur (CALM, HAPPY, SAD, ENERGETIC)"
// @Param activity query string false "Activité (WORK, EXERCISE, RELAX, PARTY)"
// @Param timeBucket query string false "Tranche horaire (MORNING, AFTERNOON, EVENING, NIGHT)"
// @Param limit query int false "Nombre de recommandations" default(20)
// @Success 200 {object} Response
// @Router /recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	userID, ok := common.GetExternalUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "identity not established"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			response.ValidationError(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var listeningCtx *entities.ListeningContext
	mood := c.Query("mood")
	activity := c.Query("activity")
	timeBucket := c.Query("timeBucket")
	if mood != "" || activity != "" || timeBucket != "" {
		listeningCtx = &entities.ListeningContext{
			Mood:       entities.Mood(mood),
			Activity:   entities.Activity(activity),
			TimeBucket: entities.TimeBucket(timeBucket),
		}
	}

	recommendations, err := h.engine.GetRecommendations(c.Request.Context(), userID, &Request{
		Context: listeningCtx,
		Limit:   limit,
	})
	if err != nil {
		h.logger.Error("Failed to get recommendations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendations)
}
