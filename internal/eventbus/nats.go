package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// Sujets publiés sur le bus. Publication fire-and-forget en NATS core: la
// livraison durable n'est pas un objectif du cœur.
const (
	SubjectInteractionRecorded    = "interaction.recorded"
	SubjectRecommendationsRefresh = "recommendations.refreshed"
)

// Publisher interface de publication d'événements; nil quand le bus est
// désactivé
type Publisher interface {
	PublishInteractionRecorded(interaction *entities.Interaction)
	PublishRecommendationsRefreshed(userID string, reason string)
	Close()
}

// InteractionRecordedEvent charge utile de interaction.recorded
type InteractionRecordedEvent struct {
	UserID    string             `json:"user_id"`
	TrackID   string             `json:"track_id"`
	EventType entities.EventType `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
}

// RefreshedEvent charge utile de recommendations.refreshed
type RefreshedEvent struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSPublisher implémentation NATS du bus d'événements
type NATSPublisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connecte le bus; retourne nil, nil quand il est désactivé
func NewNATSPublisher(cfg config.NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("🔌 NATS event bus connected", zap.String("url", cfg.URL))
	return &NATSPublisher{nc: nc, logger: logger}, nil
}

// PublishInteractionRecorded publie un événement d'interaction persistée
func (p *NATSPublisher) PublishInteractionRecorded(interaction *entities.Interaction) {
	p.publish(SubjectInteractionRecorded, &InteractionRecordedEvent{
		UserID:    interaction.ExternalUserID,
		TrackID:   interaction.TrackID,
		EventType: interaction.EventType,
		Timestamp: interaction.CreatedAt,
	})
}

// PublishRecommendationsRefreshed publie un événement de fan-out effectué
func (p *NATSPublisher) PublishRecommendationsRefreshed(userID string, reason string) {
	p.publish(SubjectRecommendationsRefresh, &RefreshedEvent{
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

func (p *NATSPublisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("Event marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("Event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Close vide puis ferme la connexion
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", zap.Error(err))
	}
}
