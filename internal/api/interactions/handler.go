package interactions

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/common"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/domain/repositories"
	"github.com/auralis/auralis-backend/internal/eventbus"
	"github.com/auralis/auralis-backend/internal/utils/response"
	"github.com/auralis/auralis-backend/pkg/validator"
)

// InterestRefresher interface vers le rafraîchissement du graphe d'intérêts
type InterestRefresher interface {
	Refresh(ctx context.Context, userID string) (*entities.InterestGraph, error)
}

// SkipBurstDetector interface vers le devoir annexe du pipeline sur le chemin
// d'écriture
type SkipBurstDetector interface {
	OnInteraction(ctx context.Context, interaction *entities.Interaction) bool
}

// Handler gère l'enregistrement des événements d'interaction
type Handler struct {
	users        repositories.UserRepository
	tracks       repositories.TrackRepository
	interactions repositories.InteractionRepository
	engine       SkipBurstDetector
	interest     InterestRefresher
	events       eventbus.Publisher
	validator    *validator.Validator

	interestEnabled  bool
	interestDeadline time.Duration
	logger           *zap.Logger
}

// NewHandler crée le handler d'interactions
func NewHandler(
	users repositories.UserRepository,
	tracks repositories.TrackRepository,
	interactions repositories.InteractionRepository,
	engine SkipBurstDetector,
	interest InterestRefresher,
	events eventbus.Publisher,
	v *validator.Validator,
	interestEnabled bool,
	interestDeadline time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:            users,
		tracks:           tracks,
		interactions:     interactions,
		engine:           engine,
		interest:         interest,
		events:           events,
		validator:        v,
		interestEnabled:  interestEnabled,
		interestDeadline: interestDeadline,
		logger:           logger,
	}
}

// RecordInteraction handler pour enregistrer un événement d'écoute
// @Summary Enregistrer une interaction
// @Description Persiste l'événement puis applique la détection de rafale de sauts
// @Tags interactions
// @Accept json
// @Produce json
// @Param event body entities.InteractionEvent true "Événement d'interaction"
// @Success 200 {object} RecordResponse
// @Router /interactions [post]
func (h *Handler) RecordInteraction(c *gin.Context) {
	userID, ok := common.GetExternalUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "identity not established"})
		return
	}

	var event entities.InteractionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.ValidationError(c, "invalid interaction payload")
		return
	}
	if err := h.validator.Validate(&event); err != nil {
		response.ValidationError(c, err.Error())
		return
	}
	if !entities.ValidEventType(event.EventType) {
		response.ValidationError(c, "unknown event type")
		return
	}

	// La piste référencée doit exister
	if _, err := h.tracks.GetByID(c.Request.Context(), event.TrackID); err != nil {
		response.Error(c, err)
		return
	}

	// Le profil naît à la première observation de l'utilisateur
	if _, err := h.users.FindOrCreate(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	interaction, err := h.interactions.Append(c.Request.Context(), userID, &event)
	if err != nil {
		h.logger.Error("Failed to append interaction",
			zap.String("user_id", userID),
			zap.String("track_id", event.TrackID),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	refreshTriggered := h.engine.OnInteraction(c.Request.Context(), interaction)

	// Rafraîchissement du graphe d'intérêts, détaché et borné: son échec ne
	// fait jamais échouer la requête
	if h.interestEnabled {
		go h.refreshInterestGraph(userID)
	}

	if h.events != nil {
		h.events.PublishInteractionRecorded(interaction)
	}

	c.JSON(http.StatusOK, RecordResponse{
		Success:          true,
		Interaction:      interaction,
		RefreshTriggered: refreshTriggered,
	})
}

func (h *Handler) refreshInterestGraph(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.interestDeadline)
	defer cancel()

	if _, err := h.interest.Refresh(ctx, userID); err != nil {
		h.logger.Warn("Interest graph refresh failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// RecordResponse réponse de l'enregistrement d'une interaction
type RecordResponse struct {
	Success          bool                  `json:"success"`
	Interaction      *entities.Interaction `json:"interaction"`
	RefreshTriggered bool                  `json:"refreshTriggered"`
}
