package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/config"
	"codeberg.org/creatorlens/server/internal/logger"
	"codeberg.org/creatorlens/server/internal/runlock"
	"codeberg.org/creatorlens/server/internal/storage"
)

func main() {
	flags, err := config.ParseRecomputeFlags(os.Args[1:])
	if err != nil {
		logger.FatalErr(err, "invalid flags")
	}

	cfg, err := config.LoadWorkerEnvironment()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewPool(ctx, cfg.SupabaseConnString, storage.WorkerPool)
	if err != nil {
		logger.FatalErr(err, "failed to connect to database")
	}
	defer db.Close()

	salesRepo := sales.NewRepository(db)
	store := attribution.NewPostgresStore(db, salesRepo, posts.NewRepository(db))

	if err := store.Initialize(ctx); err != nil {
		logger.FatalErr(err, "failed to initialize attribution schema")
	}

	// share the server's lock when redis is available so a CLI run never
	// interleaves with a dashboard-triggered one
	var locker runlock.Locker = runlock.NewMemoryLocker()
	if cfg.RedisURL != "" {
		redisLocker, err := runlock.NewRedisLockerFromURL(cfg.RedisURL, 0)
		if err != nil {
			logger.FatalErr(err, "failed to connect to redis")
		}
		defer redisLocker.Close() //nolint:errcheck // best-effort cleanup on exit
		locker = redisLocker
	}

	svc := attribution.New(store, locker)

	userIDs := []string{flags.UserID}
	if flags.All {
		userIDs, err = store.ListUserIDs(ctx)
		if err != nil {
			logger.FatalErr(err, "failed to list users")
		}
	}

	summary := recompute(ctx, svc, userIDs, flags)

	logger.Info("recompute finished",
		"users", summary.Users,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"attributions_created", summary.AttributionsCreated,
	)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
