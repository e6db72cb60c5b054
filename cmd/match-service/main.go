package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"foundly-match-service/internal/adapters/broadcaster"
	"foundly-match-service/internal/adapters/db"
	"foundly-match-service/internal/adapters/redis"
	"foundly-match-service/internal/adapters/scheduler"
	"foundly-match-service/internal/adapters/ws"
	"foundly-match-service/internal/app"
	"foundly-match-service/internal/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Foundly Match Service...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	// Create repositories
	repoFactory := db.NewRepositoryFactory(dbConn)
	itemRepo := repoFactory.GetItemRepository()
	notificationRepo := repoFactory.GetNotificationRepository()
	userRepo := repoFactory.GetUserRepository()

	log.Info().Msg("Database repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	// Create Redis broadcaster
	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	log.Info().Msg("Redis broadcaster initialized")

	// Create notification retention scheduler
	retentionScheduler := scheduler.NewRetentionScheduler(scheduler.RetentionSchedulerParams{
		RedisClient: redisClient,
		Purger:      notificationRepo,
		Retention:   cfg.Matching.NotificationRetention,
		Logger:      log.Logger,
	})

	// Create business services
	matchService := app.NewMatchService(app.MatchServiceParams{
		ItemRepo:          itemRepo,
		NotificationRepo:  notificationRepo,
		Broadcaster:       redisBroadcaster,
		Scheduler:         retentionScheduler,
		MatchRadiusKm:     cfg.Matching.MatchRadiusKm,
		ProximityRadiusKm: cfg.Matching.ProximityRadiusKm,
		Retention:         cfg.Matching.NotificationRetention,
		Logger:            log.Logger,
	})
	itemService := app.NewItemService(app.ItemServiceParams{
		ItemRepo: itemRepo,
		UserRepo: userRepo,
		Linker:   matchService,
		Logger:   log.Logger,
	})
	notificationService := app.NewNotificationService(app.NotificationServiceParams{
		NotificationRepo: notificationRepo,
		Logger:           log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Start retention scheduler
	retentionScheduler.Start()
	log.Info().Msg("Notification retention scheduler started")

	wsServer := ws.NewServer(ws.ServerParams{
		Config:              cfg,
		ItemService:         itemService,
		NotificationService: notificationService,
		Broadcaster:         redisBroadcaster,
		Logger:              log.Logger,
	})

	log.Info().Msg("WebSocket server initialized")

	// Start WebSocket server
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting WebSocket server")
		if err := wsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start WebSocket server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop retention scheduler
	retentionScheduler.Stop()
	log.Info().Msg("Notification retention scheduler stopped")

	// Stop WebSocket server
	if err := wsServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping WebSocket server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		// JSON format (default)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global logger
	zerolog.DefaultContextLogger = &log.Logger
}
