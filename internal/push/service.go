package push

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/eventbus"
	"github.com/auralis/auralis-backend/internal/recommend"
)

// Noms des événements du canal de push
const (
	EventRecommendationsUpdate = "recommendations:update"
	EventPong                  = "pong"
)

// Event enveloppe envoyée sur le canal de push
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// UpdatePayload charge utile d'un recommendations:update
type UpdatePayload struct {
	Tracks []*entities.Track `json:"tracks"`
	Reason string            `json:"reason"`
}

// Pipeline interface vers le pipeline de recommandations
type Pipeline interface {
	GetRecommendations(ctx context.Context, userID string, req *recommend.Request) (*recommend.Response, error)
	Invalidate(ctx context.Context, userID string) error
}

// Stats instantané du registre pour les métriques
type Stats struct {
	ActiveSessions int `json:"active_sessions"`
	ActiveUsers    int `json:"active_users"`
}

// Service registre de sessions par utilisateur et moteur de fan-out.
// Les mutations du registre sont sérialisées par le mutex global; les
// rafraîchissements sont sérialisés par utilisateur pour que deux
// déclenchements quasi simultanés produisent deux fan-outs séquentiels,
// chacun avec une liste fraîchement recalculée.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}

	// Un mutex de rafraîchissement par utilisateur; jamais retiré, une entrée
	// par utilisateur dont un rafraîchissement a été déclenché, connecté ou non
	refreshLocks sync.Map

	pipeline Pipeline
	events   eventbus.Publisher
	cfg      config.PushConfig
	logger   *zap.Logger
}

// SetEventPublisher branche le bus d'événements optionnel
func (s *Service) SetEventPublisher(events eventbus.Publisher) {
	s.events = events
}

// NewService crée le moteur de push
func NewService(pipeline Pipeline, cfg config.PushConfig, logger *zap.Logger) *Service {
	return &Service{
		sessions: make(map[string]map[*Session]struct{}),
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger,
	}
}

// OnConnect insère la session dans l'ensemble de son utilisateur
func (s *Service) OnConnect(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sessions[session.UserID]
	if !ok {
		set = make(map[*Session]struct{})
		s.sessions[session.UserID] = set
	}
	set[session] = struct{}{}

	s.logger.Info("Push session registered",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Int("user_sessions", len(set)),
	)
}

// OnDisconnect retire la session; l'entrée utilisateur disparaît quand son
// ensemble se vide. Sûr en cas de double appel.
func (s *Service) OnDisconnect(session *Session) {
	s.mu.Lock()
	set, ok := s.sessions[session.UserID]
	if ok {
		delete(set, session)
		if len(set) == 0 {
			delete(s.sessions, session.UserID)
		}
	}
	s.mu.Unlock()

	session.closeSend()

	if ok {
		s.logger.Info("Push session unregistered",
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID),
		)
	}
}

// TriggerRefreshAsync lance un rafraîchissement détaché: la requête
// déclenchante n'attend pas le fan-out et ne peut pas l'annuler
func (s *Service) TriggerRefreshAsync(userID string, reason string) {
	go s.TriggerRefresh(userID, reason)
}

// TriggerRefresh invalide le cache, relance le pipeline et diffuse le
// résultat à toutes les sessions de l'utilisateur. Jamais d'erreur remontée:
// un échec laisse les sessions silencieuses jusqu'au prochain déclenchement.
func (s *Service) TriggerRefresh(userID string, reason string) {
	lock, _ := s.refreshLocks.LoadOrStore(userID, &sync.Mutex{})
	userLock := lock.(*sync.Mutex)
	userLock.Lock()
	defer userLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshDeadline)
	defer cancel()

	if err := s.pipeline.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Cache invalidation failed during refresh",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	response, err := s.pipeline.GetRecommendations(ctx, userID, &recommend.Request{Limit: 20})
	if err != nil {
		s.logger.Error("Refresh pipeline failed, sessions stay silent",
			zap.String("user_id", userID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}

	event := &Event{
		Event: EventRecommendationsUpdate,
		Data: &UpdatePayload{
			Tracks: response.Tracks,
			Reason: reason,
		},
	}

	delivered := 0
	for _, session := range s.sessionsOf(userID) {
		if session.emit(event, s.cfg.EmitTimeout) {
			delivered++
		} else {
			s.logger.Warn("Push emit failed, skipping session",
				zap.String("session_id", session.ID),
				zap.String("user_id", userID),
			)
		}
	}

	s.logger.Info("📡 Recommendations update fanned out",
		zap.String("user_id", userID),
		zap.String("reason", reason),
		zap.Int("sessions", delivered),
	)

	if s.events != nil {
		s.events.PublishRecommendationsRefreshed(userID, reason)
	}
}

// sessionsOf instantané des sessions d'un utilisateur
func (s *Service) sessionsOf(userID string) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.sessions[userID]
	out := make([]*Session, 0, len(set))
	for session := range set {
		out = append(out, session)
	}
	return out
}

// GetStats retourne un instantané du registre; lecture globale, cohérence
// éventuelle suffisante pour les métriques
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, set := range s.sessions {
		total += len(set)
	}
	return Stats{
		ActiveSessions: total,
		ActiveUsers:    len(s.sessions),
	}
}
