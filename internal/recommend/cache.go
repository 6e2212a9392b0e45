package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache interface pour le cache des recommandations
type Cache interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, response *Response, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID string) error
}

// RedisCache implémentation du cache avec Redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache crée un nouveau cache Redis
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

// CacheKey clé déterministe d'une entrée: empreinte (utilisateur, contexte
// normalisé). Un contexte absent et un contexte vide donnent la même clé.
func CacheKey(userID string, part string) string {
	return fmt.Sprintf("recommendations:%s:%s", userID, part)
}

// Get récupère une réponse depuis le cache; nil, nil sur absence
func (c *RedisCache) Get(ctx context.Context, key string) (*Response, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var response Response
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		c.logger.Warn("Failed to unmarshal cached recommendations", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	c.logger.Debug("📦 Retrieved recommendations from cache", zap.String("key", key))
	return &response, nil
}

// Set met en cache une réponse avec TTL
func (c *RedisCache) Set(ctx context.Context, key string, response *Response, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("💾 Cached recommendations",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// InvalidateUser supprime toutes les entrées préfixées par l'utilisateur
func (c *RedisCache) InvalidateUser(ctx context.Context, userID string) error {
	pattern := CacheKey(userID, "*")

	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to get cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}

		c.logger.Info("🗑️ Invalidated user recommendations cache",
			zap.String("user_id", userID),
			zap.Int("keys_deleted", len(keys)),
		)
	}

	return nil
}
