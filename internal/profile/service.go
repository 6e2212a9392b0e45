package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/domain/repositories"
)

// Service maintient l'embedding de goûts à 256 dimensions d'un profil.
// Le calcul vit dans le store (voir UserRepository.UpsertProfileEmbedding);
// ce service n'est que le point d'appel nommé du pipeline.
type Service struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewService crée le service d'embedding de profil
func NewService(users repositories.UserRepository, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Recompute recalcule l'embedding. Idempotent et sûr en concurrence: la
// transaction du store fournit l'ordre. Après retour, un FindOrCreate reflète
// le nouvel embedding, ou l'ancien si aucune interaction ne qualifiait.
func (s *Service) Recompute(ctx context.Context, userID string) error {
	if err := s.users.UpsertProfileEmbedding(ctx, userID); err != nil {
		s.logger.Warn("Profile embedding recompute failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
