package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fanhunt/application"
	"fanhunt/config"
	"fanhunt/database"
	"fanhunt/events"
	"fanhunt/httpapi"
	"fanhunt/infrastructure"
	"fanhunt/infrastructure/observability"
	"fanhunt/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the ledger HTTP service
func Run(ctx context.Context) error {
	log.Info("Starting fanhunt ledger...")

	// Load configuration
	cfg := config.Get()

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnectionWithOptions(ctx, cfg.GetDatabaseURL(), database.PoolOptions{
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Forward committed events to NATS
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		natsClient, err = connectEventStream(ctx, cfg, eventBus, metrics)
		if err != nil {
			db.Close()
			return err
		}
	} else {
		log.Warn("NATS_SERVERS not set, domain events stay in process")
	}

	// Initialize leaderboard cache
	var cache application.LeaderboardCache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = infrastructure.NewRedisClient(ctx, infrastructure.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// The cache is optional, the database answers every read
			log.WithError(err).Warn("Leaderboard cache unavailable, continuing without it")
		} else {
			cache = infrastructure.NewRedisLeaderboardCache(redisClient, cfg.LeaderboardCacheTTL)
		}
	}

	// Initialize unit of work factory and transaction runner
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	runner := application.NewTransactionRunner(uowFactory, application.TransactionPolicy{
		MaxAttempts:    cfg.TxMaxAttempts,
		AttemptTimeout: cfg.TxAttemptTimeout,
		RetryBudget:    cfg.TxRetryBudget,
	}, metrics)

	// Initialize application handlers
	redemptionHandler := application.NewRedemptionHandler(runner, metrics)
	leaderboardHandler := application.NewLeaderboardHandler(runner, cache, cfg.LeaderboardDefaultLimit, cfg.LeaderboardMaxLimit)
	profileHandler := application.NewProfileHandler(runner)
	catalogHandler := application.NewCatalogHandler(runner)

	eventBus.Subscribe(events.EventTypePointsBalanceChanged, leaderboardHandler.HandleEvent)
	eventBus.Subscribe(events.EventTypeUserRegistered, leaderboardHandler.HandleEvent)

	// Initialize HTTP server
	api := httpapi.NewHandler(redemptionHandler, leaderboardHandler, profileHandler, catalogHandler,
		func(ctx context.Context) error {
			return db.Pool.Ping(ctx)
		})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for context cancellation
	log.WithField("environment", cfg.Environment).Info("Ledger is running")
	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	// Cleanup resources
	log.Info("Shutting down ledger...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	// Let in-flight event handlers finish before their sinks go away
	eventBus.Wait()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Error closing Redis connection")
		}
	}

	log.Info("Closing database connection...")
	db.Close()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return runErr
}

// connectEventStream connects to NATS, ensures the event stream exists and
// subscribes the forwarder to every domain event
func connectEventStream(ctx context.Context, cfg *config.Config, bus *events.Bus, recorder infrastructure.PublishRecorder) (*infrastructure.NATSClient, error) {
	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")

	client := infrastructure.NewNATSClient(cfg.NATSServers, cfg.OTelServiceName)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, mapper, recorder)
	bus.SubscribeAll(publisher.Handle)

	log.Info("Domain events are forwarded to NATS")
	return client, nil
}
