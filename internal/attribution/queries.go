package attribution

const (
	createTablesSQL = `
		CREATE TABLE IF NOT EXISTS attribution_runs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			attributions_created INTEGER NOT NULL DEFAULT 0,
			posts_updated INTEGER NOT NULL DEFAULT 0,
			posts_zeroed INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			finished_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attribution_runs_user_id ON attribution_runs(user_id, finished_at DESC);

		CREATE TABLE IF NOT EXISTS attributions (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			sale_id TEXT NOT NULL,
			post_id TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			method TEXT NOT NULL,
			run_id TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (user_id, sale_id)
		);
		CREATE INDEX IF NOT EXISTS idx_attributions_post_id ON attributions(post_id);

		ALTER TABLE social_posts ADD COLUMN IF NOT EXISTS attributed_revenue NUMERIC NOT NULL DEFAULT 0;
		ALTER TABLE social_posts ADD COLUMN IF NOT EXISTS attributed_sales INTEGER NOT NULL DEFAULT 0;
	`

	queryDeleteAttributions = `DELETE FROM attributions WHERE user_id = $1`

	queryInsertAttribution = `
		INSERT INTO attributions (user_id, sale_id, post_id, confidence, method, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// zeroes every post of the user that is not in the new rollup set
	queryZeroStaleRollups = `
		UPDATE social_posts
		SET attributed_revenue = 0, attributed_sales = 0
		WHERE user_id = $1
			AND NOT (id::text = ANY($2::text[]))
			AND (attributed_revenue <> 0 OR attributed_sales <> 0)
	`

	queryUpdatePostRollup = `
		UPDATE social_posts
		SET attributed_revenue = $3, attributed_sales = $4
		WHERE id::text = $1 AND user_id = $2
	`

	queryInsertRun = `
		INSERT INTO attribution_runs (
			id, user_id, status, attributions_created, posts_updated, posts_zeroed, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	queryCountAttributions = `SELECT COUNT(*) FROM attributions WHERE user_id = $1`

	queryListAttributions = `
		SELECT
			a.sale_id,
			a.post_id,
			a.confidence,
			a.method,
			COALESCE(s.product_name, ''),
			COALESCE(s.amount, 0),
			s.sale_date,
			COALESCE(s.platform, ''),
			COALESCE(p.caption, ''),
			p.posted_at
		FROM attributions a
		LEFT JOIN sales s ON s.id::text = a.sale_id
		LEFT JOIN social_posts p ON p.id::text = a.post_id
		WHERE a.user_id = $1
		ORDER BY s.sale_date DESC NULLS LAST, a.sale_id
		LIMIT $2 OFFSET $3
	`

	queryLatestRun = `
		SELECT id, user_id, status, attributions_created, posts_updated, posts_zeroed, started_at, finished_at
		FROM attribution_runs
		WHERE user_id = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`

	// a user whose sales are all gone still has attributions to clear
	queryListUserIDs = `
		SELECT user_id FROM sales
		UNION
		SELECT user_id FROM attributions
		ORDER BY user_id
	`
)
