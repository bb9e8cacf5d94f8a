package attribution

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/runlock"
)

const testInputTablesSQL = `
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_name TEXT,
		amount NUMERIC,
		sale_date TIMESTAMP WITH TIME ZONE,
		platform TEXT
	);
	CREATE TABLE IF NOT EXISTS social_posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		platform TEXT,
		external_post_id TEXT,
		post_url TEXT,
		post_type TEXT,
		caption TEXT,
		posted_at TIMESTAMP WITH TIME ZONE,
		likes INTEGER,
		comments INTEGER,
		shares INTEGER,
		saves INTEGER,
		views INTEGER,
		reach INTEGER,
		engagement_rate DOUBLE PRECISION
	);
`

// connects to TEST_DATABASE_URL, skipping when it is not set
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), testInputTablesSQL)
	require.NoError(t, err)

	return pool
}

func storedPost(t *testing.T, pool *pgxpool.Pool, userID, postID string) posts.Post {
	t.Helper()

	list, err := posts.NewRepository(pool).ListByUser(context.Background(), userID)
	require.NoError(t, err)

	for _, p := range list {
		if p.ID == postID {
			return p
		}
	}

	t.Fatalf("post %s not stored for %s", postID, userID)
	return posts.Post{}
}

func TestPostgresStore_RunAndRerun(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)

	store := NewPostgresStore(pool, sales.NewRepository(pool), posts.NewRepository(pool))
	require.NoError(t, store.Initialize(ctx))

	userID := "test-" + uuid.NewString()
	postID := uuid.NewString()
	saleID := uuid.NewString()

	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM attributions WHERE user_id = $1`, userID)     //nolint:errcheck // best-effort cleanup
		pool.Exec(ctx, `DELETE FROM attribution_runs WHERE user_id = $1`, userID) //nolint:errcheck // best-effort cleanup
		pool.Exec(ctx, `DELETE FROM sales WHERE user_id = $1`, userID)            //nolint:errcheck // best-effort cleanup
		pool.Exec(ctx, `DELETE FROM social_posts WHERE user_id = $1`, userID)     //nolint:errcheck // best-effort cleanup
	})

	_, err := pool.Exec(ctx,
		`INSERT INTO social_posts (id, user_id, platform, caption, posted_at) VALUES ($1, $2, 'instagram', $3, $4)`,
		postID, userID, "Loving these Align leggings today!", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO sales (id, user_id, product_name, amount, sale_date, platform) VALUES ($1, $2, 'Align Leggings', 50, $3, 'LTK')`,
		saleID, userID, saleDay,
	)
	require.NoError(t, err)

	svc := New(store, runlock.NewMemoryLocker())

	result, err := svc.RunAttribution(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AttributionsCreated)
	assert.Equal(t, 1, result.PostsUpdated)

	post := storedPost(t, pool, userID, postID)
	assert.Equal(t, 50.0, post.AttributedRevenue)
	assert.Equal(t, 1, post.AttributedSales)

	details, total, err := store.ListAttributions(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, details, 1)
	assert.Equal(t, MethodProductMatch, details[0].Method)

	// refund removes the sale; the rerun must zero the post
	_, err = pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
	require.NoError(t, err)

	// attributions outlive the sale until the rerun, so the user stays listed
	userIDs, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, userIDs, userID)

	result, err = svc.RunAttribution(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AttributionsCreated)
	assert.Equal(t, 1, result.PostsZeroed)

	post = storedPost(t, pool, userID, postID)
	assert.Zero(t, post.AttributedRevenue)
	assert.Zero(t, post.AttributedSales)

	run, err := store.LatestRun(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, 1, run.PostsZeroed)
}

func TestPostgresStore_LatestRunMissing(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)

	store := NewPostgresStore(pool, sales.NewRepository(pool), posts.NewRepository(pool))
	require.NoError(t, store.Initialize(ctx))

	_, err := store.LatestRun(ctx, "test-"+uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
}
