package attribution

import (
	"context"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
)

// the persistence boundary of a run
type Store interface {
	FetchSales(ctx context.Context, userID string) ([]sales.Sale, error)
	FetchContentPosts(ctx context.Context, userID string) ([]posts.Post, error)

	// atomically replaces the user's attribution set with plan.Attributions,
	// writes plan.Rollups, zeroes the rollup of every other post of the user
	// and records the run stamped with its commit time; either all of it is
	// visible afterwards or none
	ReplaceAttributions(ctx context.Context, plan Plan, run Run) (Applied, error)
}

// read side used by reporting handlers
type Reader interface {
	ListAttributions(ctx context.Context, userID string, limit, offset int) ([]AttributionDetail, int, error)
	LatestRun(ctx context.Context, userID string) (*Run, error)
}
