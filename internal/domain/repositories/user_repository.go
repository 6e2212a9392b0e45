package repositories

import (
	"context"

	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// UserRepository définit la persistance des profils et du graphe d'intérêts
type UserRepository interface {
	// FindOrCreate retourne le profil, en le créant au premier accès. Upsert en
	// une seule instruction pour tolérer les premiers accès concurrents.
	FindOrCreate(ctx context.Context, userID string) (*entities.UserProfile, error)

	// UpdatePreferences remplace les genres préférés (et rejetés si fournis)
	UpdatePreferences(ctx context.Context, userID string, preferred []string, disliked []string) (*entities.UserProfile, error)

	// UpsertProfileEmbedding recalcule l'embedding de goûts dans le store même:
	// moyenne des contributions poids·embedding des 50 dernières interactions
	// sur 90 jours (LIKE +2.0, PLAY +1.0, SKIP −0.5), lignes sans embedding
	// exclues. Transaction unique, no-op sans interaction qualifiante.
	UpsertProfileEmbedding(ctx context.Context, userID string) error

	// UpsertInterestGraph remplace le document et incrémente sa version de
	// façon atomique; retourne la version écrite
	UpsertInterestGraph(ctx context.Context, userID string, graph *entities.InterestGraph) (int64, error)

	// GetInterestGraph retourne le document persisté, nil si absent
	GetInterestGraph(ctx context.Context, userID string) (*entities.InterestGraph, error)
}
