package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/apperrors"
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// InteractionRepository implémentation PostgreSQL du journal d'interactions
type InteractionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewInteractionRepository crée le repository d'interactions
func NewInteractionRepository(db *sqlx.DB, logger *zap.Logger) *InteractionRepository {
	return &InteractionRepository{db: db, logger: logger}
}

func eventTypeStrings(kinds []entities.EventType) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// Append persiste une interaction, horodatage serveur faisant foi
func (r *InteractionRepository) Append(ctx context.Context, userID string, event *entities.InteractionEvent) (*entities.Interaction, error) {
	interaction := &entities.Interaction{
		ExternalUserID: userID,
		TrackID:        event.TrackID,
		EventType:      event.EventType,
		EventValue:     event.EventValue,
		Context:        event.Context.Normalize(),
		ClientTs:       event.ClientTs,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO interactions (external_user_id, track_id, event_type, event_value, context, client_ts)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		userID, event.TrackID, string(event.EventType), event.EventValue, interaction.Context, event.ClientTs,
	).Scan(&interaction.ID, &interaction.CreatedAt)
	if err != nil {
		return nil, apperrors.Store("interaction append failed", err)
	}
	return interaction, nil
}

// CountRecentSkips compte les SKIP dans (now − window, now]
func (r *InteractionRepository) CountRecentSkips(ctx context.Context, userID string, window time.Duration) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM interactions
		WHERE external_user_id = $1
		  AND event_type = 'SKIP'
		  AND created_at > NOW() - make_interval(secs => $2)`,
		userID, window.Seconds(),
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Store("skip count failed", err)
	}
	return count, nil
}

// RecentSkipTrackIDs pistes distinctes sautées dans la fenêtre, plus récentes
// d'abord
func (r *InteractionRepository) RecentSkipTrackIDs(ctx context.Context, userID string, window time.Duration, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT track_id
		FROM interactions
		WHERE external_user_id = $1
		  AND event_type = 'SKIP'
		  AND created_at > NOW() - make_interval(secs => $2)
		GROUP BY track_id
		ORDER BY MAX(created_at) DESC
		LIMIT $3`,
		userID, window.Seconds(), limit)
	if err != nil {
		return nil, apperrors.Store("recent skip fetch failed", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Store("recent skip fetch failed", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("recent skip fetch failed", err)
	}
	return ids, nil
}

// Stats agrégats toutes périodes d'un utilisateur
func (r *InteractionRepository) Stats(ctx context.Context, userID string) (*entities.InteractionStats, error) {
	var stats entities.InteractionStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE event_type = 'LIKE') AS like_count,
			COUNT(*) FILTER (WHERE event_type = 'SKIP') AS skip_count,
			COUNT(*) FILTER (WHERE event_type = 'PLAY') AS play_count
		FROM interactions
		WHERE external_user_id = $1`,
		userID,
	).Scan(&stats.Total, &stats.LikeCount, &stats.SkipCount, &stats.PlayCount)
	if err != nil {
		return nil, apperrors.Store("interaction stats failed", err)
	}
	return &stats, nil
}

// RecentWithTrackMeta lignes jointes aux métadonnées de piste, horodatage
// décroissant
func (r *InteractionRepository) RecentWithTrackMeta(ctx context.Context, userID string, limit int, windowDays int, kinds []entities.EventType) ([]*entities.InteractionWithTrackMeta, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.event_type, i.created_at, t.artist, t.genre
		FROM interactions i
		JOIN tracks t ON t.id = i.track_id
		WHERE i.external_user_id = $1
		  AND i.event_type = ANY($2::text[])
		  AND i.created_at > NOW() - make_interval(days => $3)
		ORDER BY i.created_at DESC
		LIMIT $4`,
		userID, pq.Array(eventTypeStrings(kinds)), windowDays, limit)
	if err != nil {
		return nil, apperrors.Store("recent interactions fetch failed", err)
	}
	defer rows.Close()

	out := make([]*entities.InteractionWithTrackMeta, 0, limit)
	for rows.Next() {
		var row entities.InteractionWithTrackMeta
		if err := rows.Scan(&row.EventType, &row.CreatedAt, &row.Artist, &row.Genre); err != nil {
			return nil, apperrors.Store("recent interactions fetch failed", err)
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("recent interactions fetch failed", err)
	}
	return out, nil
}

// RecentTrackIDs identifiants de pistes en ordre chronologique
func (r *InteractionRepository) RecentTrackIDs(ctx context.Context, userID string, limit int, kinds []entities.EventType) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT track_id FROM (
			SELECT track_id, created_at
			FROM interactions
			WHERE external_user_id = $1
			  AND event_type = ANY($2::text[])
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC`,
		userID, pq.Array(eventTypeStrings(kinds)), limit)
	if err != nil {
		return nil, apperrors.Store("recent track ids fetch failed", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Store("recent track ids fetch failed", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("recent track ids fetch failed", err)
	}
	return ids, nil
}
