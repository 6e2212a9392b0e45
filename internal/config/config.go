// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	NATS           NATSConfig
	Auth           AuthConfig
	Recommendation RecommendationConfig
	Push           PushConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Environment     string
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	Database     int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PoolTimeout  time.Duration
}

type NATSConfig struct {
	Enabled        bool
	URL            string
	ClientID       string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// AuthConfig mode d'extraction de l'identité vérifiée en bordure.
// "header" lit l'identifiant opaque depuis TrustedHeader (passerelle de
// confiance), "jwt" le lit depuis la claim sub d'un Bearer token.
type AuthConfig struct {
	Mode          string
	TrustedHeader string
	JWTSecret     string
}

// RecommendationConfig constantes du pipeline, valeurs par défaut de la source
type RecommendationConfig struct {
	CacheTTL               time.Duration
	DefaultLimit           int
	MaxLimit               int
	SkipWindow             time.Duration
	SkipThreshold          int
	SkipExclusionWindow    time.Duration
	SkipExclusionLimit     int
	MaxSameArtist          int
	AvoidThreshold         float64
	PopularFetchMultiplier int
	ANNFetchMultiplier     int
	InterestGraphEnabled   bool
	InterestGraphDeadline  time.Duration
	InterestGraphWindow    int
	InterestGraphMaxEvents int
}

type PushConfig struct {
	CORSOrigin      string
	EmitTimeout     time.Duration
	RefreshDeadline time.Duration
	SendBuffer      int
}

func New() *Config {
	// Récupérer DATABASE_URL depuis l'environnement
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		// Construire l'URL si pas définie
		host := getEnv("DATABASE_HOST", "localhost")
		port := getEnv("DATABASE_PORT", "5432")
		username := getEnv("DATABASE_USER", "postgres")
		password := getEnv("DATABASE_PASSWORD", "")
		database := getEnv("DATABASE_NAME", "auralis_dev")
		sslmode := "disable"

		databaseURL = "postgres://" + username + ":" + password + "@" + host + ":" + port + "/" + database + "?sslmode=" + sslmode
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:          databaseURL,
			Host:         getEnv("DATABASE_HOST", "localhost"),
			Port:         getEnv("DATABASE_PORT", "5432"),
			Username:     getEnv("DATABASE_USER", "postgres"),
			Password:     getEnv("DATABASE_PASSWORD", ""),
			Database:     getEnv("DATABASE_NAME", "auralis_dev"),
			SSLMode:      "disable",
			MaxOpenConns: getIntEnv("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getIntEnv("DATABASE_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getIntEnv("REDIS_DATABASE", 0),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 50),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 5*time.Second),
		},
		NATS: NATSConfig{
			Enabled:        getBoolEnv("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			ClientID:       getEnv("NATS_CLIENT_ID", "auralis-backend"),
			MaxReconnects:  getIntEnv("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getDurationEnv("NATS_RECONNECT_WAIT", 2*time.Second),
			ConnectTimeout: getDurationEnv("NATS_CONNECT_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Mode:          getEnv("AUTH_MODE", "header"),
			TrustedHeader: getEnv("AUTH_TRUSTED_HEADER", "X-External-User-Id"),
			JWTSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		},
		Recommendation: RecommendationConfig{
			CacheTTL:               getDurationEnv("RECO_CACHE_TTL", 300*time.Second),
			DefaultLimit:           getIntEnv("RECO_DEFAULT_LIMIT", 20),
			MaxLimit:               getIntEnv("RECO_MAX_LIMIT", 50),
			SkipWindow:             getDurationEnv("SKIP_DETECTION_WINDOW", 60*time.Second),
			SkipThreshold:          getIntEnv("SKIP_DETECTION_THRESHOLD", 2),
			SkipExclusionWindow:    getDurationEnv("SKIP_EXCLUSION_WINDOW", 24*time.Hour),
			SkipExclusionLimit:     getIntEnv("SKIP_EXCLUSION_LIMIT", 20),
			MaxSameArtist:          getIntEnv("RECO_MAX_SAME_ARTIST", 3),
			AvoidThreshold:         getFloatEnv("RECO_AVOID_THRESHOLD", 0.6),
			PopularFetchMultiplier: getIntEnv("RECO_POPULAR_FETCH_MULTIPLIER", 2),
			ANNFetchMultiplier:     getIntEnv("RECO_ANN_FETCH_MULTIPLIER", 3),
			InterestGraphEnabled:   getBoolEnv("INTEREST_GRAPH_ENABLED", true),
			InterestGraphDeadline:  getDurationEnv("INTEREST_GRAPH_DEADLINE", 2*time.Second),
			InterestGraphWindow:    getIntEnv("INTEREST_GRAPH_WINDOW_DAYS", 90),
			InterestGraphMaxEvents: getIntEnv("INTEREST_GRAPH_MAX_EVENTS", 500),
		},
		Push: PushConfig{
			CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
			EmitTimeout:     getDurationEnv("PUSH_EMIT_TIMEOUT", 1*time.Second),
			RefreshDeadline: getDurationEnv("PUSH_REFRESH_DEADLINE", 5*time.Second),
			SendBuffer:      getIntEnv("PUSH_SEND_BUFFER", 256),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
