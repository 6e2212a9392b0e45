package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/apperrors"
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// UserRepository implémentation PostgreSQL des profils et du graphe d'intérêts
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository crée le repository de profils
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const profileColumns = `external_user_id, preferred_genres, disliked_genres, profile_embedding, last_active_at, created_at, updated_at`

func scanProfile(row *sql.Row) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	err := row.Scan(
		&profile.ExternalUserID,
		&profile.PreferredGenres,
		&profile.DislikedGenres,
		&profile.ProfileEmbedding,
		&profile.LastActiveAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindOrCreate upsert en une instruction: deux premiers accès concurrents
// convergent vers un profil unique à l'état par défaut
func (r *UserRepository) FindOrCreate(ctx context.Context, userID string) (*entities.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO user_profiles (external_user_id)
		VALUES ($1)
		ON CONFLICT (external_user_id)
		DO UPDATE SET last_active_at = NOW()
		RETURNING `+profileColumns, userID)

	profile, err := scanProfile(row)
	if err != nil {
		return nil, apperrors.Store("profile find-or-create failed", err)
	}
	return profile, nil
}

// UpdatePreferences remplace les genres préférés; les genres rejetés ne sont
// touchés que si fournis
func (r *UserRepository) UpdatePreferences(ctx context.Context, userID string, preferred []string, disliked []string) (*entities.UserProfile, error) {
	var dislikedArg interface{}
	if disliked != nil {
		dislikedArg = pq.Array(disliked)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE user_profiles
		SET preferred_genres = $2::text[],
		    disliked_genres = COALESCE($3::text[], disliked_genres),
		    updated_at = NOW()
		WHERE external_user_id = $1
		RETURNING `+profileColumns,
		userID, pq.Array(preferred), dislikedArg)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "user profile not found")
		}
		return nil, apperrors.Store("preferences update failed", err)
	}
	return profile, nil
}

// UpsertProfileEmbedding recalcule l'embedding de goûts dans le store même.
// Instruction unique donc transaction unique; la moyenne des contributions
// poids·embedding évite de transférer les 50 vecteurs candidats. Sans ligne
// qualifiante la clause WHERE fait de l'opération un no-op.
func (r *UserRepository) UpsertProfileEmbedding(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_profiles up
		SET profile_embedding = sub.avg_emb,
		    updated_at = NOW()
		FROM (
			SELECT AVG(vector_scale(emb, w)) AS avg_emb
			FROM (
				SELECT t.embedding AS emb,
				       CASE i.event_type
				           WHEN 'LIKE' THEN 2.0
				           WHEN 'PLAY' THEN 1.0
				           WHEN 'SKIP' THEN -0.5
				       END AS w
				FROM interactions i
				JOIN tracks t ON t.id = i.track_id
				WHERE i.external_user_id = $1
				  AND i.event_type IN ('LIKE', 'PLAY', 'SKIP')
				  AND t.embedding IS NOT NULL
				  AND i.created_at > NOW() - INTERVAL '90 days'
				ORDER BY i.created_at DESC
				LIMIT 50
			) recent
		) sub
		WHERE up.external_user_id = $1
		  AND sub.avg_emb IS NOT NULL`, userID)
	if err != nil {
		return apperrors.Store("profile embedding upsert failed", err)
	}
	return nil
}

// UpsertInterestGraph remplace le document et incrémente la version de façon
// atomique
func (r *UserRepository) UpsertInterestGraph(ctx context.Context, userID string, graph *entities.InterestGraph) (int64, error) {
	var revision int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_interest_graph (external_user_id, graph, version, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (external_user_id)
		DO UPDATE SET graph = EXCLUDED.graph,
		              version = user_interest_graph.version + 1,
		              updated_at = NOW()
		RETURNING version`,
		userID, graph,
	).Scan(&revision)
	if err != nil {
		return 0, apperrors.Store("interest graph upsert failed", err)
	}
	return revision, nil
}

// GetInterestGraph retourne le document persisté, nil si absent
func (r *UserRepository) GetInterestGraph(ctx context.Context, userID string) (*entities.InterestGraph, error) {
	var graph entities.InterestGraph
	err := r.db.QueryRowContext(ctx, `
		SELECT graph FROM user_interest_graph WHERE external_user_id = $1`, userID,
	).Scan(&graph)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Store("interest graph fetch failed", err)
	}
	return &graph, nil
}
