// Package attribution links affiliate sales to the content post that most
// plausibly generated them and keeps per-post revenue rollups in step.
//
// A run reads the user's full sale and post sets, matches every sale through
// the product, time-window and platform tiers, and then replaces the user's
// attribution set and rollups in a single atomic apply step.
package attribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/logger"
	"codeberg.org/creatorlens/server/internal/runlock"
)

const defaultApplyTimeout = 30 * time.Second

type Service struct {
	store        Store
	locker       runlock.Locker
	applyTimeout time.Duration
	now          func() time.Time
}

type Option func(*Service)

// bounds how long the apply step may take once started
func WithApplyTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.applyTimeout = d
	}
}

// overrides the clock used for run timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, locker runlock.Locker, opts ...Option) *Service {
	s := &Service{
		store:        store,
		locker:       locker,
		applyTimeout: defaultApplyTimeout,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// recomputes the user's attribution set from scratch
// runs for the same user are serialized; cancelling ctx before the apply step
// leaves no trace, and once apply starts it completes or rolls back as a whole
func (s *Service) RunAttribution(ctx context.Context, userID string) (*Result, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	startedAt := s.now()
	log := logger.FromContext(ctx).With("user_id", userID)

	snapshot, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := BuildPlan(userID, snapshot)
	plan.RunID = uuid.NewString()
	plan.StartedAt = startedAt

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the store stamps FinishedAt when it commits
	run := Run{
		ID:                  plan.RunID,
		UserID:              userID,
		Status:              RunStatusCompleted,
		AttributionsCreated: len(plan.Attributions),
		StartedAt:           startedAt,
	}

	// the apply step ignores caller cancellation so it never stops halfway
	applyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.applyTimeout)
	defer cancel()

	applied, err := s.store.ReplaceAttributions(applyCtx, plan, run)
	if err != nil {
		return nil, &PersistError{Op: "replace attributions", Err: err}
	}

	result := &Result{
		RunID:               plan.RunID,
		AttributionsCreated: len(plan.Attributions),
		PostsUpdated:        applied.PostsUpdated,
		PostsZeroed:         applied.PostsZeroed,
		SkippedSales:        plan.SkippedSales,
		SkippedPosts:        plan.SkippedPosts,
	}

	log.Info("attribution run completed",
		"run_id", result.RunID,
		"sales", len(snapshot.Sales),
		"posts", len(snapshot.Posts),
		"attributions_created", result.AttributionsCreated,
		"posts_updated", result.PostsUpdated,
		"posts_zeroed", result.PostsZeroed,
		"skipped_sales", result.SkippedSales,
		"skipped_posts", result.SkippedPosts,
		"duration", s.now().Sub(startedAt).String(),
	)

	return result, nil
}

// takes the per-user run lock
// only a wait cut short by ctx means another run holds it; anything else is a
// failure of the lock backend
func (s *Service) acquire(ctx context.Context, userID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, "attribution:"+userID)
	if err == nil {
		return release, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}

	return nil, &FetchError{Op: "run lock", Err: err}
}

// loads sales and posts concurrently
func (s *Service) fetch(ctx context.Context, userID string) (Snapshot, error) {
	var (
		saleList []sales.Sale
		postList []posts.Post
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.store.FetchSales(gctx, userID)
		if err != nil {
			return &FetchError{Op: "sales", Err: err}
		}
		saleList = list
		return nil
	})

	g.Go(func() error {
		list, err := s.store.FetchContentPosts(gctx, userID)
		if err != nil {
			return &FetchError{Op: "content posts", Err: err}
		}
		postList = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Sales: saleList, Posts: postList}, nil
}
