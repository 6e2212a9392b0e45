package recommend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/domain/repositories"
)

// Raisons de rafraîchissement transmises au moteur de push
const (
	ReasonSkipDetected  = "skip_detected"
	ReasonContextChange = "context_change"
	ReasonManualRefresh = "manual_refresh"
)

// ProfileEmbeddingService interface vers le recalcul d'embedding de profil
type ProfileEmbeddingService interface {
	Recompute(ctx context.Context, userID string) error
}

// InterestGraphProvider interface vers le moteur de graphe d'intérêts
type InterestGraphProvider interface {
	GetOrCompute(ctx context.Context, userID string) (*entities.InterestGraph, error)
}

// RefreshNotifier interface vers le moteur de push; l'appel ne bloque pas la
// requête déclenchante
type RefreshNotifier interface {
	TriggerRefreshAsync(userID string, reason string)
}

// Request requête de recommandation
type Request struct {
	Context *entities.ListeningContext `json:"context,omitempty"`
	Limit   int                        `json:"limit,omitempty"`
}

// Response réponse de recommandation, mise en cache telle quelle
type Response struct {
	Tracks      []*entities.Track          `json:"tracks"`
	Context     *entities.ListeningContext `json:"context,omitempty"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// Engine pipeline de recommandations: cache → cold-start ou personnalisé →
// filtres d'évitement → rerank contextuel → diversité d'artistes → cache
type Engine struct {
	users        repositories.UserRepository
	tracks       repositories.TrackRepository
	interactions repositories.InteractionRepository
	profiles     ProfileEmbeddingService
	interest     InterestGraphProvider
	cache        Cache
	cfg          config.RecommendationConfig
	notifier     RefreshNotifier
	logger       *zap.Logger
}

// NewEngine crée le pipeline de recommandations
func NewEngine(
	users repositories.UserRepository,
	tracks repositories.TrackRepository,
	interactions repositories.InteractionRepository,
	profiles ProfileEmbeddingService,
	interest InterestGraphProvider,
	cache Cache,
	cfg config.RecommendationConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		users:        users,
		tracks:       tracks,
		interactions: interactions,
		profiles:     profiles,
		interest:     interest,
		cache:        cache,
		cfg:          cfg,
		logger:       logger,
	}
}

// SetRefreshNotifier branche le moteur de push, construit après le pipeline
func (e *Engine) SetRefreshNotifier(notifier RefreshNotifier) {
	e.notifier = notifier
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// GetRecommendations produit la liste ordonnée, diverse et ajustée au
// contexte pour un couple (utilisateur, contexte)
func (e *Engine) GetRecommendations(ctx context.Context, userID string, req *Request) (*Response, error) {
	normalized := req.Context.Normalize()
	limit := e.clampLimit(req.Limit)
	key := CacheKey(userID, normalized.CacheKeyPart())

	// Erreur de cache en lecture = miss
	if cached, err := e.cache.Get(ctx, key); err == nil && cached != nil {
		e.logger.Debug("📦 Recommendations served from cache",
			zap.String("user_id", userID),
			zap.String("key", key),
		)
		return cached, nil
	} else if err != nil {
		e.logger.Warn("Cache read failed, treating as miss", zap.Error(err))
	}

	profile, err := e.users.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := e.interactions.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var candidates []*entities.Track
	coldStart := stats.Total == 0 || (len(profile.PreferredGenres) == 0 && !profile.HasEmbedding())
	if coldStart {
		candidates, err = e.coldStartCandidates(ctx, profile, limit)
	} else {
		candidates, profile, err = e.personalizedCandidates(ctx, userID, profile, limit)
	}
	if err != nil {
		return nil, err
	}

	if normalized != nil {
		candidates = rerankByContext(candidates, normalized)
	}
	candidates = enforceArtistDiversity(candidates, e.cfg.MaxSameArtist)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	response := &Response{
		Tracks:      candidates,
		Context:     normalized,
		GeneratedAt: time.Now().UTC(),
	}

	// Erreur de cache en écriture = abandonnée
	if err := e.cache.Set(ctx, key, response, e.cfg.CacheTTL); err != nil {
		e.logger.Warn("Cache write failed, dropping entry", zap.Error(err))
	}

	e.logger.Info("🎯 Generated recommendations",
		zap.String("user_id", userID),
		zap.Bool("cold_start", coldStart),
		zap.Int("tracks_count", len(response.Tracks)),
	)
	return response, nil
}

// coldStartCandidates chemin sans signal de goût exploitable: populaires par
// genres préférés, sinon populaires globaux
func (e *Engine) coldStartCandidates(ctx context.Context, profile *entities.UserProfile, limit int) ([]*entities.Track, error) {
	fetch := limit * e.cfg.PopularFetchMultiplier
	if len(profile.PreferredGenres) > 0 {
		return e.tracks.PopularByGenre(ctx, profile.PreferredGenres, nil, fetch)
	}
	return e.tracks.PopularGlobal(ctx, fetch)
}

// personalizedCandidates chemin personnalisé: embedding frais, exclusion des
// sauts récents, ANN puis filtres, repli populaire sans embedding
func (e *Engine) personalizedCandidates(ctx context.Context, userID string, profile *entities.UserProfile, limit int) ([]*entities.Track, *entities.UserProfile, error) {
	// Recalcul best-effort: échec = on continue avec l'embedding existant
	if err := e.profiles.Recompute(ctx, userID); err != nil {
		e.logger.Warn("Embedding recompute failed, using stored embedding",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	exclusions, err := e.interactions.RecentSkipTrackIDs(ctx, userID, e.cfg.SkipExclusionWindow, e.cfg.SkipExclusionLimit)
	if err != nil {
		return nil, nil, err
	}

	// Recharger le profil pour voir l'embedding fraîchement écrit
	profile, err = e.users.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if !profile.HasEmbedding() {
		candidates, err := e.tracks.PopularByGenre(ctx, profile.PreferredGenres, exclusions, limit*e.cfg.PopularFetchMultiplier)
		return candidates, profile, err
	}

	candidates, err := e.tracks.ANNCandidatesByEmbedding(ctx, profile.ProfileEmbedding, exclusions, limit*e.cfg.ANNFetchMultiplier)
	if err != nil {
		return nil, nil, err
	}

	candidates = filterDislikedGenres(candidates, profile)
	candidates = e.filterByInterestGraph(ctx, userID, candidates)
	return candidates, profile, nil
}

func filterDislikedGenres(tracks []*entities.Track, profile *entities.UserProfile) []*entities.Track {
	out := tracks[:0]
	for _, t := range tracks {
		if !profile.Dislikes(t.Genre) {
			out = append(out, t)
		}
	}
	return out
}

// filterByInterestGraph élimine les candidats dont l'artiste ou le genre porte
// un score d'évitement égal ou supérieur au seuil. Graphe absent ou en erreur = aucun
// biais, jamais d'échec de la requête.
func (e *Engine) filterByInterestGraph(ctx context.Context, userID string, tracks []*entities.Track) []*entities.Track {
	if !e.cfg.InterestGraphEnabled {
		return tracks
	}

	graph, err := e.interest.GetOrCompute(ctx, userID)
	if err != nil {
		e.logger.Warn("Interest graph unavailable, skipping avoid filter",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return tracks
	}
	if graph == nil {
		return tracks
	}

	out := tracks[:0]
	for _, t := range tracks {
		if graph.AvoidScore(t.Artist, t.Genre) < e.cfg.AvoidThreshold {
			out = append(out, t)
		}
	}
	return out
}

// Invalidate supprime toutes les entrées de cache de l'utilisateur
func (e *Engine) Invalidate(ctx context.Context, userID string) error {
	return e.cache.InvalidateUser(ctx, userID)
}

// OnInteraction devoir annexe du pipeline sur le chemin d'écriture: après un
// SKIP persisté, compte la fenêtre glissante et au seuil invalide le cache et
// signale le moteur de push. Retourne vrai si un rafraîchissement est parti.
func (e *Engine) OnInteraction(ctx context.Context, interaction *entities.Interaction) bool {
	if interaction.EventType != entities.EventSkip {
		return false
	}

	count, err := e.interactions.CountRecentSkips(ctx, interaction.ExternalUserID, e.cfg.SkipWindow)
	if err != nil {
		e.logger.Warn("Skip-burst check failed",
			zap.String("user_id", interaction.ExternalUserID),
			zap.Error(err),
		)
		return false
	}
	if count < e.cfg.SkipThreshold {
		return false
	}

	if err := e.Invalidate(ctx, interaction.ExternalUserID); err != nil {
		e.logger.Warn("Cache invalidation on skip-burst failed",
			zap.String("user_id", interaction.ExternalUserID),
			zap.Error(err),
		)
	}

	e.logger.Info("⏭️ Skip burst detected, triggering refresh",
		zap.String("user_id", interaction.ExternalUserID),
		zap.Int("skips_in_window", count),
	)

	if e.notifier != nil {
		e.notifier.TriggerRefreshAsync(interaction.ExternalUserID, ReasonSkipDetected)
	}
	return true
}
