package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/apperrors"
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// TrackRepository implémentation PostgreSQL des lectures de candidats
type TrackRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTrackRepository crée le repository de pistes
func NewTrackRepository(db *sqlx.DB, logger *zap.Logger) *TrackRepository {
	return &TrackRepository{db: db, logger: logger}
}

const trackColumns = `t.id, t.title, t.artist, t.genre, t.duration, t.url, t.preview_url, t.audio_features, t.embedding, t.created_at`

func scanTrack(rows *sql.Rows) (*entities.Track, error) {
	var (
		track      entities.Track
		previewURL sql.NullString
		features   []byte
	)
	if err := rows.Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&track.Genre,
		&track.Duration,
		&track.URL,
		&previewURL,
		&features,
		&track.Embedding,
		&track.CreatedAt,
	); err != nil {
		return nil, err
	}
	if previewURL.Valid {
		track.PreviewURL = &previewURL.String
	}
	if len(features) > 0 {
		track.Features = &entities.AudioFeatures{}
		if err := track.Features.Scan(features); err != nil {
			return nil, err
		}
	}
	return &track, nil
}

func collectTracks(rows *sql.Rows) ([]*entities.Track, error) {
	defer rows.Close()
	tracks := make([]*entities.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// GetByID retourne une piste par identifiant
func (r *TrackRepository) GetByID(ctx context.Context, id string) (*entities.Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks t
		WHERE t.id = $1`, id)
	if err != nil {
		return nil, apperrors.Store("track lookup failed", err)
	}
	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, apperrors.Store("track lookup failed", err)
	}
	if len(tracks) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "track not found")
	}
	return tracks[0], nil
}

// ANNCandidatesByEmbedding recherche approchée par distance cosinus via
// l'index HNSW; seules les pistes à embedding non nul sont éligibles
func (r *TrackRepository) ANNCandidatesByEmbedding(ctx context.Context, embedding entities.Vector, excludeIDs []string, limit int) ([]*entities.Track, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks t
		WHERE t.embedding IS NOT NULL
		  AND NOT (t.id = ANY($2::text[]))
		ORDER BY t.embedding <=> $1::vector
		LIMIT $3`, embedding, pq.Array(excludeIDs), limit)
	if err != nil {
		return nil, apperrors.Store("ann candidate fetch failed", err)
	}
	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, apperrors.Store("ann candidate fetch failed", err)
	}
	return tracks, nil
}

// PopularByGenre pistes des genres donnés, score de popularité décroissant
func (r *TrackRepository) PopularByGenre(ctx context.Context, genres []string, excludeIDs []string, limit int) ([]*entities.Track, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks t
		JOIN popular_tracks pt ON pt.track_id = t.id
		WHERE t.genre = ANY($1::text[])
		  AND NOT (t.id = ANY($2::text[]))
		ORDER BY pt.popularity_score DESC, t.id
		LIMIT $3`, pq.Array(genres), pq.Array(excludeIDs), limit)
	if err != nil {
		return nil, apperrors.Store("popular by genre fetch failed", err)
	}
	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, apperrors.Store("popular by genre fetch failed", err)
	}
	return tracks, nil
}

// PopularGlobal pistes toutes populations, score de popularité décroissant
func (r *TrackRepository) PopularGlobal(ctx context.Context, limit int) ([]*entities.Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks t
		JOIN popular_tracks pt ON pt.track_id = t.id
		ORDER BY pt.popularity_score DESC, t.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.Store("popular global fetch failed", err)
	}
	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, apperrors.Store("popular global fetch failed", err)
	}
	return tracks, nil
}

// RefreshPopularTracks rafraîchit l'agrégat de popularité hors requête
func (r *TrackRepository) RefreshPopularTracks(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY popular_tracks`); err != nil {
		return apperrors.Store("popular tracks refresh failed", err)
	}
	r.logger.Info("🔄 Agrégat popular_tracks rafraîchi")
	return nil
}
