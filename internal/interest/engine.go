package interest

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/domain/repositories"
)

// Poids par type d'événement pour l'accumulation des scores bruts
var eventWeights = map[entities.EventType]float64{
	entities.EventLike:    2.0,
	entities.EventPlay:    1.0,
	entities.EventSkip:    -1.0,
	entities.EventDislike: -2.0,
}

var scoredEventKinds = []entities.EventType{
	entities.EventPlay,
	entities.EventLike,
	entities.EventSkip,
	entities.EventDislike,
}

// Engine dérive le document de biais par utilisateur depuis l'historique
// d'interactions récent
type Engine struct {
	interactions repositories.InteractionRepository
	users        repositories.UserRepository
	windowDays   int
	maxEvents    int
	logger       *zap.Logger
}

// NewEngine crée le moteur de graphe d'intérêts
func NewEngine(
	interactions repositories.InteractionRepository,
	users repositories.UserRepository,
	windowDays int,
	maxEvents int,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		interactions: interactions,
		users:        users,
		windowDays:   windowDays,
		maxEvents:    maxEvents,
		logger:       logger,
	}
}

// GetOrCompute retourne le document existant tel quel, sinon le calcule,
// le persiste et le retourne. nil sans erreur quand l'utilisateur n'a aucune
// interaction exploitable.
func (e *Engine) GetOrCompute(ctx context.Context, userID string) (*entities.InterestGraph, error) {
	existing, err := e.users.GetInterestGraph(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return e.Refresh(ctx, userID)
}

// Refresh recalcule toujours; persiste si non nil
func (e *Engine) Refresh(ctx context.Context, userID string) (*entities.InterestGraph, error) {
	graph, err := e.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, nil
	}

	revision, err := e.users.UpsertInterestGraph(ctx, userID, graph)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Interest graph refreshed",
		zap.String("user_id", userID),
		zap.Int64("revision", revision),
		zap.Int("top_artists", len(graph.TopArtists)),
		zap.Int("avoid_artists", len(graph.AvoidArtists)),
	)
	return graph, nil
}

func (e *Engine) compute(ctx context.Context, userID string) (*entities.InterestGraph, error) {
	rows, err := e.interactions.RecentWithTrackMeta(ctx, userID, e.maxEvents, e.windowDays, scoredEventKinds)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	artistScores := make(map[string]float64)
	genreScores := make(map[string]float64)
	for _, row := range rows {
		weight := eventWeights[row.EventType]
		if weight == 0 {
			continue
		}
		// Les lignes sans artiste ou genre ne contribuent pas à cet axe
		if row.Artist != "" {
			artistScores[row.Artist] += weight
		}
		if row.Genre != "" {
			genreScores[row.Genre] += weight
		}
	}

	return &entities.InterestGraph{
		Version:      entities.InterestGraphSchemaVersion,
		GeneratedBy:  "heuristic",
		WindowDays:   e.windowDays,
		TopArtists:   topNormalized(artistScores),
		TopGenres:    topNormalized(genreScores),
		AvoidArtists: avoidNormalized(artistScores),
		AvoidGenres:  avoidNormalized(genreScores),
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

// topNormalized garde au plus 20 entrées triées par score décroissant et
// divise par le maximum. Max ≤ 0 → toutes les valeurs émises valent 0. Les
// scores bruts négatifs sont plafonnés à 0: les cartes top restent dans
// [0,1], la masse négative vit dans les cartes avoid.
func topNormalized(scores map[string]float64) map[string]float64 {
	type entry struct {
		key   string
		score float64
	}
	entries := make([]entry, 0, len(scores))
	for k, s := range scores {
		entries = append(entries, entry{k, s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > entities.InterestGraphMaxEntries {
		entries = entries[:entities.InterestGraphMaxEntries]
	}

	out := make(map[string]float64, len(entries))
	if len(entries) == 0 {
		return out
	}
	max := entries[0].score
	for _, en := range entries {
		if max <= 0 || en.score <= 0 {
			out[en.key] = 0
			continue
		}
		out[en.key] = round4(en.score / max)
	}
	return out
}

// avoidNormalized ne retient que les scores bruts négatifs, passés en valeur
// absolue puis normalisés comme les tops
func avoidNormalized(scores map[string]float64) map[string]float64 {
	negatives := make(map[string]float64)
	for k, s := range scores {
		if s < 0 {
			negatives[k] = -s
		}
	}
	return topNormalized(negatives)
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
