package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/config"
	"codeberg.org/creatorlens/server/internal/logger"
	"codeberg.org/creatorlens/server/internal/ratelimit"
	"codeberg.org/creatorlens/server/internal/runlock"
	"codeberg.org/creatorlens/server/internal/storage"
)

const (
	// a crashed holder blocks that user's runs for at most this long
	runLockTTL = 5 * time.Minute

	// upper bound for the transactional apply step of a run
	applyTimeout = 30 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := storage.NewPool(ctx, cfg.SupabaseConnString, storage.ServerPool)
	if err != nil {
		return nil, err
	}

	salesRepo := sales.NewRepository(db)
	postRepo := posts.NewRepository(db)
	commerceRepo := commerceposts.NewRepository(db)

	store := attribution.NewPostgresStore(db, salesRepo, postRepo)
	if err := store.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// runs serialize across instances through redis when it is configured
	var (
		locker      runlock.Locker = runlock.NewMemoryLocker()
		redisLocker *runlock.RedisLocker
		redisClient *redis.Client
	)

	if cfg.RedisURL != "" {
		redisLocker, err = runlock.NewRedisLockerFromURL(cfg.RedisURL, runLockTTL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize run lock: %w", err)
		}
		locker = redisLocker
		redisClient = redisLocker.Client()
	} else {
		logger.Warn("REDIS_URL not set, using in-process run lock and rate limiter")
	}

	limiterStore, err := ratelimit.NewStore(redisClient)
	if err != nil {
		closeAll(db, redisLocker)
		return nil, err
	}

	runLimit, err := ratelimit.PerUser("attribution_run", cfg.AttributionRunRate, limiterStore)
	if err != nil {
		closeAll(db, redisLocker)
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		db:           db,
		config:       cfg,
		postRepo:     postRepo,
		commerceRepo: commerceRepo,
		store:        store,
		attribution:  attribution.New(store, locker, attribution.WithApplyTimeout(applyTimeout)),
		locker:       locker,
		redisLocker:  redisLocker,
		runLimit:     runLimit,
		router:       gin.Default(),
	}

	RegisterRoutes(server.router, server)

	logger.Info("server initialized",
		"environment", cfg.Environment,
		"redis", redisLocker != nil,
		"attribution_run_rate", cfg.AttributionRunRate,
	)

	return server, nil
}

// releases the pool and the redis connection
func (s *Server) Close() {
	closeAll(s.db, s.redisLocker)
}

func closeAll(db interface{ Close() }, redisLocker *runlock.RedisLocker) {
	if redisLocker != nil {
		redisLocker.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
	db.Close()
}
