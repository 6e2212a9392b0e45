package entities

import (
	"time"

	"github.com/lib/pq"
)

// MaxExternalUserIDLen longueur maximale de l'identifiant fourni par la plateforme hôte
const MaxExternalUserIDLen = 255

// UserProfile représente le profil de goûts d'un utilisateur de la plateforme hôte.
// L'identité (external_user_id) est extraite en bordure, jamais créée ici.
type UserProfile struct {
	ExternalUserID   string         `json:"external_user_id" db:"external_user_id"`
	PreferredGenres  pq.StringArray `json:"preferred_genres" db:"preferred_genres"`
	DislikedGenres   pq.StringArray `json:"disliked_genres" db:"disliked_genres"`
	ProfileEmbedding Vector         `json:"-" db:"profile_embedding"`
	LastActiveAt     time.Time      `json:"last_active_at" db:"last_active_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// HasEmbedding indique si le profil porte un embedding de goûts exploitable
func (p *UserProfile) HasEmbedding() bool {
	return len(p.ProfileEmbedding) == EmbeddingDim
}

// Dislikes indique si un genre figure dans les genres rejetés du profil
func (p *UserProfile) Dislikes(genre string) bool {
	for _, g := range p.DislikedGenres {
		if g == genre {
			return true
		}
	}
	return false
}

// UpdatePreferencesRequest requête de mise à jour des préférences de genres
type UpdatePreferencesRequest struct {
	PreferredGenres []string `json:"preferredGenres" validate:"required,min=1,max=10,dive,safe_genre"`
	DislikedGenres  []string `json:"dislikedGenres,omitempty" validate:"omitempty,max=10,dive,safe_genre"`
}
