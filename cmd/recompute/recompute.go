package main

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/config"
	"codeberg.org/creatorlens/server/internal/logger"
)

// at most this many users are recomputed at once
const maxConcurrentRuns = 4

type runner interface {
	RunAttribution(ctx context.Context, userID string) (*attribution.Result, error)
}

type Summary struct {
	Users               int
	Succeeded           int
	Failed              int
	AttributionsCreated int
}

// runs every user through the engine, throttled to flags.RPS run starts per second
// a failing user is logged and counted; it does not stop the batch
func recompute(ctx context.Context, svc runner, userIDs []string, flags config.Flags) Summary {
	limiter := rate.NewLimiter(rate.Limit(flags.RPS), 1)

	var (
		mu      sync.Mutex
		summary = Summary{Users: len(userIDs)}
	)

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentRuns)

	for _, userID := range userIDs {
		if err := limiter.Wait(ctx); err != nil {
			logger.ErrorErr(err, "recompute interrupted")
			break
		}

		g.Go(func() error {
			runCtx, cancel := context.WithTimeout(ctx, flags.Timeout)
			defer cancel()

			result, err := svc.RunAttribution(runCtx, userID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				summary.Failed++
				logger.ErrorErr(err, "attribution run failed", "user_id", userID)
				return nil
			}

			summary.Succeeded++
			summary.AttributionsCreated += result.AttributionsCreated
			return nil
		})
	}

	g.Wait() //nolint:errcheck // workers never return errors

	// users never started because of cancellation count as failed
	summary.Failed = summary.Users - summary.Succeeded
	return summary
}
