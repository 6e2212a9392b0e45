package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/config"
)

// NewConnection crée une nouvelle connexion PostgreSQL avec pool borné
func NewConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("erreur ouverture base de données: %w", err)
	}

	// Configuration du pool de connexions
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	return db, nil
}

// CreateTables crée le schéma si absent. En production le schéma est géré par
// les migrations; ceci couvre le développement et les tests d'intégration.
func CreateTables(db *sqlx.DB, logger *zap.Logger) error {
	queries := []string{
		createVectorExtension,
		createVectorScaleFunction,
		createTracksTable,
		createUserProfilesTable,
		createInteractionsTable,
		createPlaylistsTable,
		createPlaylistTracksTable,
		createUserInterestGraphTable,
		createPopularTracksView,
		createIndexes,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			logger.Error("Erreur création schéma", zap.Error(err), zap.String("query", query))
			return fmt.Errorf("erreur création schéma: %w", err)
		}
	}

	logger.Info("✅ Schéma PostgreSQL prêt")
	return nil
}

const createVectorExtension = `
CREATE EXTENSION IF NOT EXISTS vector;
`

// vector_scale multiplie un vecteur par un scalaire, utilisé par le recalcul
// d'embedding de profil dans le store
const createVectorScaleFunction = `
CREATE OR REPLACE FUNCTION vector_scale(v vector, s double precision) RETURNS vector AS $$
    SELECT ARRAY(SELECT (x * s)::real FROM unnest(v::real[]) AS x)::vector
$$ LANGUAGE SQL IMMUTABLE;
`

const createTracksTable = `
CREATE TABLE IF NOT EXISTS tracks (
    id VARCHAR(64) PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    artist VARCHAR(500) NOT NULL,
    genre VARCHAR(100) NOT NULL DEFAULT '',
    duration INTEGER NOT NULL,
    url TEXT NOT NULL,
    preview_url TEXT,
    audio_features JSONB,
    embedding vector(256),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createUserProfilesTable = `
CREATE TABLE IF NOT EXISTS user_profiles (
    external_user_id VARCHAR(255) PRIMARY KEY,
    preferred_genres TEXT[] NOT NULL DEFAULT '{}',
    disliked_genres TEXT[] NOT NULL DEFAULT '{}',
    profile_embedding vector(256),
    last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createInteractionsTable = `
CREATE TABLE IF NOT EXISTS interactions (
    id BIGSERIAL PRIMARY KEY,
    external_user_id VARCHAR(255) NOT NULL,
    track_id VARCHAR(64) NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
    event_type VARCHAR(20) NOT NULL,
    event_value INTEGER,
    context JSONB,
    client_ts TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createPlaylistsTable = `
CREATE TABLE IF NOT EXISTS playlists (
    id VARCHAR(64) PRIMARY KEY,
    external_user_id VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createPlaylistTracksTable = `
CREATE TABLE IF NOT EXISTS playlist_tracks (
    playlist_id VARCHAR(64) NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
    track_id VARCHAR(64) NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (playlist_id, track_id)
);
`

const createUserInterestGraphTable = `
CREATE TABLE IF NOT EXISTS user_interest_graph (
    external_user_id VARCHAR(255) PRIMARY KEY,
    graph JSONB NOT NULL,
    version BIGINT NOT NULL DEFAULT 1,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// popularity_score = PLAY + LIKE toutes populations confondues, rafraîchi hors
// du chemin de requête
const createPopularTracksView = `
CREATE MATERIALIZED VIEW IF NOT EXISTS popular_tracks AS
SELECT
    track_id,
    COUNT(*) FILTER (WHERE event_type IN ('PLAY', 'LIKE')) AS popularity_score,
    COUNT(*) FILTER (WHERE event_type = 'SKIP') AS skip_count
FROM interactions
GROUP BY track_id;
`

const createIndexes = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_popular_tracks_track_id ON popular_tracks(track_id);
CREATE INDEX IF NOT EXISTS idx_tracks_genre ON tracks(genre);
CREATE INDEX IF NOT EXISTS idx_tracks_embedding_hnsw ON tracks USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_user_profiles_embedding_hnsw ON user_profiles USING hnsw (profile_embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(external_user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_user_skip ON interactions(external_user_id, event_type, created_at DESC) WHERE event_type = 'SKIP';
CREATE INDEX IF NOT EXISTS idx_playlist_tracks_track ON playlist_tracks(track_id);
`
