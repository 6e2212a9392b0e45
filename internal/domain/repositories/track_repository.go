package repositories

import (
	"context"

	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// TrackRepository définit les lectures de candidats sur le catalogue de pistes.
// Toute requête SQL vit dans l'adaptateur; les appelants ne voient que cette
// surface typée.
type TrackRepository interface {
	// GetByID retourne une piste par identifiant, apperrors.KindNotFound si absente
	GetByID(ctx context.Context, id string) (*entities.Track, error)

	// ANNCandidatesByEmbedding retourne les pistes à embedding non nul, triées
	// par distance cosinus croissante à l'embedding donné, excludeIDs filtrés
	ANNCandidatesByEmbedding(ctx context.Context, embedding entities.Vector, excludeIDs []string, limit int) ([]*entities.Track, error)

	// PopularByGenre retourne les pistes des genres donnés triées par score de
	// popularité décroissant (agrégat matérialisé PLAY+LIKE)
	PopularByGenre(ctx context.Context, genres []string, excludeIDs []string, limit int) ([]*entities.Track, error)

	// PopularGlobal même tri, sans filtre de genre
	PopularGlobal(ctx context.Context, limit int) ([]*entities.Track, error)

	// RefreshPopularTracks rafraîchit l'agrégat de popularité à la demande
	RefreshPopularTracks(ctx context.Context) error
}
