package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	// Valeurs par défaut du pipeline, héritées de la source
	assert.Equal(t, 300*time.Second, cfg.Recommendation.CacheTTL)
	assert.Equal(t, 20, cfg.Recommendation.DefaultLimit)
	assert.Equal(t, 50, cfg.Recommendation.MaxLimit)
	assert.Equal(t, 60*time.Second, cfg.Recommendation.SkipWindow)
	assert.Equal(t, 2, cfg.Recommendation.SkipThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Recommendation.SkipExclusionWindow)
	assert.Equal(t, 20, cfg.Recommendation.SkipExclusionLimit)
	assert.Equal(t, 3, cfg.Recommendation.MaxSameArtist)
	assert.Equal(t, 0.6, cfg.Recommendation.AvoidThreshold)
	assert.Equal(t, 2, cfg.Recommendation.PopularFetchMultiplier)
	assert.Equal(t, 3, cfg.Recommendation.ANNFetchMultiplier)
	assert.True(t, cfg.Recommendation.InterestGraphEnabled)
	assert.Equal(t, 90, cfg.Recommendation.InterestGraphWindow)
	assert.Equal(t, 500, cfg.Recommendation.InterestGraphMaxEvents)

	// Pool de connexions borné par contrat
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)

	// Bus d'événements coupé par défaut
	assert.False(t, cfg.NATS.Enabled)

	// Identité extraite de l'en-tête de confiance par défaut
	assert.Equal(t, "header", cfg.Auth.Mode)
	assert.Equal(t, "X-External-User-Id", cfg.Auth.TrustedHeader)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SKIP_DETECTION_WINDOW", "90s")
	t.Setenv("SKIP_DETECTION_THRESHOLD", "5")
	t.Setenv("RECO_CACHE_TTL", "1m")
	t.Setenv("RECO_MAX_SAME_ARTIST", "2")
	t.Setenv("INTEREST_GRAPH_ENABLED", "false")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/reco?sslmode=disable")

	cfg := New()

	assert.Equal(t, 90*time.Second, cfg.Recommendation.SkipWindow)
	assert.Equal(t, 5, cfg.Recommendation.SkipThreshold)
	assert.Equal(t, time.Minute, cfg.Recommendation.CacheTTL)
	assert.Equal(t, 2, cfg.Recommendation.MaxSameArtist)
	assert.False(t, cfg.Recommendation.InterestGraphEnabled)
	assert.Equal(t, "postgres://user:pass@db:5432/reco?sslmode=disable", cfg.Database.URL)
}

func TestNew_InvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("SKIP_DETECTION_THRESHOLD", "not-a-number")
	t.Setenv("RECO_CACHE_TTL", "soon")

	cfg := New()

	assert.Equal(t, 2, cfg.Recommendation.SkipThreshold)
	assert.Equal(t, 300*time.Second, cfg.Recommendation.CacheTTL)
}
