package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/adapters/postgres"
	"github.com/auralis/auralis-backend/internal/adapters/redis_cache"
	"github.com/auralis/auralis-backend/internal/api/interactions"
	"github.com/auralis/auralis-backend/internal/api/user"
	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/eventbus"
	"github.com/auralis/auralis-backend/internal/interest"
	"github.com/auralis/auralis-backend/internal/middleware"
	"github.com/auralis/auralis-backend/internal/monitoring"
	"github.com/auralis/auralis-backend/internal/profile"
	"github.com/auralis/auralis-backend/internal/push"
	"github.com/auralis/auralis-backend/internal/recommend"
	"github.com/auralis/auralis-backend/internal/utils"
	"github.com/auralis/auralis-backend/pkg/validator"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Configuration
	cfg := config.New()

	logger, err := utils.NewLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatal("Logger initialization failed:", err)
	}
	defer func() { _ = logger.Sync() }()

	// Mode Gin
	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.CreateTables(db, logger); err != nil {
		logger.Warn("Schema setup warning", zap.Error(err))
	}

	// Redis
	redisClient, err := redis_cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	// Métriques
	metrics := monitoring.NewPrometheusMetrics(logger)

	// Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	trackRepo := postgres.NewTrackRepository(db, logger)
	interactionRepo := postgres.NewInteractionRepository(db, logger)

	// Composants du cœur, construits feuilles d'abord
	cache := recommend.NewRedisCache(redisClient, logger)
	interestEngine := interest.NewEngine(
		interactionRepo,
		userRepo,
		cfg.Recommendation.InterestGraphWindow,
		cfg.Recommendation.InterestGraphMaxEvents,
		logger,
	)
	profileService := profile.NewService(userRepo, logger)
	engine := recommend.NewEngine(
		userRepo,
		trackRepo,
		interactionRepo,
		profileService,
		interestEngine,
		cache,
		cfg.Recommendation,
		logger,
	)

	pushService := push.NewService(engine, cfg.Push, logger)
	engine.SetRefreshNotifier(pushService)

	// Bus d'événements optionnel
	natsPublisher, err := eventbus.NewNATSPublisher(cfg.NATS, logger)
	if err != nil {
		logger.Fatal("NATS connection failed", zap.Error(err))
	}
	var events eventbus.Publisher
	if natsPublisher != nil {
		events = natsPublisher
		pushService.SetEventPublisher(events)
		defer natsPublisher.Close()
	}

	v := validator.New()

	// Routes
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.Push.CORSOrigin))
	router.Use(metrics.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		dbOK := db.PingContext(c.Request.Context()) == nil
		cacheOK := redisClient.Ping(c.Request.Context()).Err() == nil

		status := "ok"
		httpStatus := http.StatusOK
		if !dbOK {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbOK,
				"cache":    cacheOK,
			},
		})
	})
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/")
	api.Use(middleware.IdentityMiddleware(cfg.Auth))

	user.SetupRoutes(api, userRepo, v, logger)
	recommend.SetupRoutes(api, engine, logger)

	interactionHandler := interactions.NewHandler(
		userRepo,
		trackRepo,
		interactionRepo,
		engine,
		interestEngine,
		events,
		v,
		cfg.Recommendation.InterestGraphEnabled,
		cfg.Recommendation.InterestGraphDeadline,
		logger,
	)
	interactions.SetupRoutes(api, interactionHandler)

	// Canal de push: l'identité arrive dans la query du handshake, vérifiée
	// en bordure
	push.SetupRoutes(router, pushService, cfg.Push.CORSOrigin, logger)

	// Jauges du registre de sessions
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := pushService.GetStats()
			metrics.PushSessionsActive.Set(float64(stats.ActiveSessions))
			metrics.PushUsersActive.Set(float64(stats.ActiveUsers))
		}
	}()

	// Rafraîchissement hors requête de l'agrégat de popularité
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := trackRepo.RefreshPopularTracks(ctx); err != nil {
				logger.Warn("Popular tracks refresh failed", zap.Error(err))
			}
			cancel()
		}
	}()

	// Pas de WriteTimeout global: il couperait les connexions du canal de
	// push. Les deadlines d'écriture WebSocket sont posées par connexion.
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Info("🚀 Serveur démarré", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Arrêt gracieux
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
